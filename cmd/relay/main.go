package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/milk9111/tokencam/relay"
)

func main() {
	addr := flag.String("addr", ":8712", "listen address")
	flag.Parse()

	hub := relay.NewHub()
	go hub.Run()

	http.HandleFunc("/ws", hub.ServeWS)

	log.Printf("[relay] listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
