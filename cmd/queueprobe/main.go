// Diagnostic program: queues the given files and prints what the loader
// resolved for each of them.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/llehouerou/unplayer/internal/errmsg"
	"github.com/llehouerou/unplayer/internal/mediaart"
	"github.com/llehouerou/unplayer/internal/metadata"
	"github.com/llehouerou/unplayer/internal/queue"
	"github.com/llehouerou/unplayer/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s FILE...", os.Args[0])
	}
	paths := os.Args[1:]

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	art, err := mediaart.New(mediaart.Options{Dir: os.TempDir() + "/queueprobe-art", Logger: logger})
	if err != nil {
		log.Fatal(errmsg.Format(errmsg.OpInitialize, err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := metadata.NewLoader(ctx, metadata.LoaderOptions{Art: art, Logger: logger})

	s := session.New(session.Options{Loader: loader, Logger: logger})
	defer s.Close()

	sub := s.Subscribe()
	go func() {
		for {
			select {
			case e := <-sub.Events:
				log.Printf("event %T %+v", e, e)
			case <-sub.Done:
				return
			}
		}
	}()

	start := time.Now()
	if err := s.AddTracks(paths, queue.AddOptions{SetCurrent: -1}); err != nil {
		log.Fatal(errmsg.Format(errmsg.OpQueueAdd, err))
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, time.Minute)
	defer waitCancel()
	if err := s.WaitLoaded(waitCtx); err != nil {
		log.Fatalf("Loading did not finish: %v", err)
	}
	log.Printf("Resolved %d tracks in %v", s.Len(), time.Since(start).Round(time.Millisecond))

	for i, t := range s.Tracks() {
		log.Printf("[%d] %s", i, t.Locator)
		log.Printf("    title=%q artist=%q (known %v) album=%q (known %v)",
			t.Title, t.Artist, t.ArtistKnown, t.Album, t.AlbumKnown)
		log.Printf("    duration=%v artwork=%q", t.Duration, t.Artwork)
	}
}
