package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/td0m/remind/internal/gateway"
	"github.com/td0m/remind/pkg/engine"
	"github.com/td0m/remind/pkg/persist"
)

func main() {
	// .env keeps deployment config out of the command line; flags
	// still win when both are given
	godotenv.Load()

	var (
		addr      = flag.String("addr", envOr("REMIND_ADDR", ":8420"), "listen address")
		file      = flag.String("file", envOr("REMIND_FILE", "./tasks.json"), "path to task file")
		heartbeat = flag.Duration("heartbeat", envDurationOr("REMIND_HEARTBEAT", time.Minute), "status report interval, 0 disables")
	)
	flag.Parse()

	e, err := engine.New(persist.InJSON(*file), engine.SystemClock())
	if err != nil {
		// an unreadable task file is not a fresh start, refuse to run
		log.Fatal(err)
	}
	hub := gateway.NewHub(e)

	if *heartbeat > 0 {
		go func() {
			for range time.Tick(*heartbeat) {
				log.Printf("status: %d clients connected, %d users with tasks", hub.Clients(), e.Users())
			}
		}()
	}

	http.HandleFunc("/ws", hub.ServeUser)
	http.HandleFunc("/channel", hub.ServeChannel)

	log.Printf("remindd listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return d
}
