package main

import (
	"flag"
	"log"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/tokencam/relay"
	"github.com/milk9111/tokencam/settings"
	"github.com/milk9111/tokencam/tables"
)

func main() {
	isHost := flag.Bool("host", false, "run as the table host (GM)")
	relayAddr := flag.String("relay", "", "relay server address (host:port); empty runs offline")
	tableFile := flag.String("table", "demo.yaml", "table definition in tables/ (basename)")
	name := flag.String("name", "", "client id; defaults to a random id")
	settingsFile := flag.String("settings", "tokencam.yaml", "user settings file")
	shotsDir := flag.String("shots", "", "directory to watch for camera shot scripts")
	debug := flag.Bool("debug", false, "enable debug overlay")
	flag.Parse()

	clientID := *name
	if clientID == "" {
		clientID = uuid.NewString()
	}

	table, err := tables.Load(*tableFile)
	if err != nil {
		log.Fatalf("[main] table %s: %v", *tableFile, err)
	}

	var store settings.Store
	userStore, err := settings.OpenFile(*settingsFile)
	if err != nil {
		log.Printf("[main] settings file %s: %v; using in-memory settings", *settingsFile, err)
		store = settings.NewMemory()
	} else {
		defer userStore.Close()
		store = userStore
	}

	if *relayAddr != "" {
		conn, err := relay.Dial(*relayAddr, table.ID, clientID)
		if err != nil {
			log.Fatalf("[main] relay %s: %v", *relayAddr, err)
		}
		defer conn.Close()
		shared := relay.NewStore(store, conn)
		defer shared.Close()
		store = shared
	}

	if err := clipboard.Init(); err != nil {
		// Debug copy chord degrades to a log line.
		log.Printf("[main] clipboard unavailable: %v", err)
	}

	game, err := NewGame(GameConfig{
		Table:    table,
		ClientID: clientID,
		IsHost:   *isHost,
		Store:    store,
		ShotsDir: *shotsDir,
		Debug:    *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	title := "tokencam (guest)"
	if *isHost {
		title = "tokencam (host)"
	}
	ebiten.SetWindowTitle(title)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
