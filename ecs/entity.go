package ecs

import "strconv"

// Entity is a generational handle. A destroyed entity's id is recycled
// with a bumped generation, so stale handles stop matching.
type Entity struct {
	ID  int
	Gen int
}

// Valid reports whether the handle refers to any entity at all.
func (e Entity) Valid() bool {
	return e.ID > 0
}

func (e Entity) String() string {
	return strconv.Itoa(e.ID) + "v" + strconv.Itoa(e.Gen)
}

// entityStore tracks generations and free ids.
type entityStore struct {
	nextID int
	gen    []int
	dead   []bool
	free   []int
}

func (s *entityStore) create() Entity {
	var id int
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.nextID++
		id = s.nextID
		s.gen = append(s.gen, 0)
		s.dead = append(s.dead, false)
	}
	s.dead[id-1] = false
	return Entity{ID: id, Gen: s.gen[id-1]}
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.ID - 1
	s.gen[idx]++
	s.dead[idx] = true
	s.free = append(s.free, e.ID)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	return !s.dead[e.ID-1] && s.gen[e.ID-1] == e.Gen
}

func (s *entityStore) alive() []Entity {
	out := make([]Entity, 0, s.nextID-len(s.free))
	for id := 1; id <= s.nextID; id++ {
		if !s.dead[id-1] {
			out = append(out, Entity{ID: id, Gen: s.gen[id-1]})
		}
	}
	return out
}
