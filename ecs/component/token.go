package component

import "image/color"

// Token is a tabletop piece. OwnerID names the client allowed to move it;
// an empty owner means host-controlled.
type Token struct {
	ID        string
	Name      string
	OwnerID   string
	Radius    float64
	Elevation float64
	Color     color.NRGBA
}

var TokenComponent = NewComponent[Token]()

// Selected marks a token as part of the local selection. Order preserves
// selection order for the broadcast id list.
type Selected struct {
	Order int
}

var SelectedComponent = NewComponent[Selected]()
