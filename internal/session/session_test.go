package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/unplayer/internal/queue"
)

// delayLoader answers every request from its own goroutine after delay.
type delayLoader struct {
	delay time.Duration
}

func (l delayLoader) Load(reqs []queue.LoadRequest, deliver func(queue.LoadResult)) {
	for _, r := range reqs {
		go func() {
			time.Sleep(l.delay)
			deliver(queue.LoadResult{
				ID:       r.ID,
				Locator:  r.Locator,
				Metadata: queue.Metadata{Title: "title of " + r.Locator, Artist: "Artist"},
			})
		}()
	}
}

// inlineLoader answers before Load returns.
type inlineLoader struct{}

func (inlineLoader) Load(reqs []queue.LoadRequest, deliver func(queue.LoadResult)) {
	for _, r := range reqs {
		deliver(queue.LoadResult{ID: r.ID, Locator: r.Locator, Err: errors.New("unreadable")})
	}
}

// silentLoader never answers.
type silentLoader struct{}

func (silentLoader) Load([]queue.LoadRequest, func(queue.LoadResult)) {}

func newTestSession(loader queue.Loader) *Session {
	return New(Options{Loader: loader, Random: rand.New(rand.NewPCG(7, 8))})
}

func drain(sub *Subscription) []queue.Event {
	var out []queue.Event
	for {
		select {
		case e := <-sub.Events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestSession_WaitLoaded_AsyncLoader(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(delayLoader{delay: 50 * time.Millisecond})
		defer s.Close()

		require.NoError(t, s.AddTracks([]string{"/a.mp3", "/b.mp3"}, queue.AddOptions{SetCurrent: -1}))
		assert.True(t, s.IsAddingTracks())

		require.NoError(t, s.WaitLoaded(t.Context()))

		assert.False(t, s.IsAddingTracks())
		tracks := s.Tracks()
		require.Len(t, tracks, 2)
		assert.Equal(t, "title of /a.mp3", tracks[0].Title)
		assert.Equal(t, "title of /b.mp3", tracks[1].Title)
		assert.False(t, tracks[1].Pending)
	})
}

func TestSession_WaitLoaded_NothingPending(t *testing.T) {
	s := newTestSession(nil)
	defer s.Close()

	require.NoError(t, s.WaitLoaded(context.Background()))
}

func TestSession_WaitLoaded_ContextDeadline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(silentLoader{})
		defer s.Close()
		require.NoError(t, s.AddTrack("/a.mp3"))

		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()

		require.ErrorIs(t, s.WaitLoaded(ctx), context.DeadlineExceeded)
	})
}

func TestSession_InlineDeliveryDoesNotDeadlock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(inlineLoader{})
		defer s.Close()

		require.NoError(t, s.AddTracks([]string{"/x.mp3"}, queue.AddOptions{SetCurrent: -1}))
		require.NoError(t, s.WaitLoaded(t.Context()))

		cur := s.Current()
		require.NotNil(t, cur)
		assert.False(t, cur.Pending)
		assert.Equal(t, queue.UnknownArtist, cur.Artist)
	})
}

func TestSession_SubscriptionReceivesEventsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(delayLoader{delay: time.Millisecond})
		defer s.Close()
		sub := s.Subscribe()

		require.NoError(t, s.AddTracks([]string{"/a.mp3"}, queue.AddOptions{SetCurrent: -1}))
		require.NoError(t, s.WaitLoaded(t.Context()))
		require.NoError(t, s.SetShuffle(true))

		assert.Equal(t, []queue.Event{
			queue.TracksAdded{Start: 0, Count: 1},
			queue.CurrentTrackChanged{Index: 0},
			queue.AddingTracksChanged{Adding: true},
			queue.TrackUpdated{Index: 0},
			queue.AddingTracksChanged{Adding: false},
			queue.ShuffleChanged{Enabled: true},
		}, drain(sub))
	})
}

func TestSession_SubscriptionDropsWhenFull(t *testing.T) {
	s := newTestSession(nil)
	defer s.Close()
	sub := s.Subscribe()

	for range eventBufferSize + 10 {
		_, err := s.ToggleShuffle()
		require.NoError(t, err)
	}

	assert.Len(t, drain(sub), eventBufferSize)
}

func TestSession_Unsubscribe(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(nil)
		defer s.Close()
		sub := s.Subscribe()

		s.Unsubscribe(sub)
		<-sub.Done
		require.NoError(t, s.SetShuffle(true))

		assert.Empty(t, drain(sub))
		s.Unsubscribe(sub) // second call is a no-op
	})
}

func TestSession_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(silentLoader{})
		sub := s.Subscribe()
		require.NoError(t, s.AddTrack("/a.mp3"))

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		<-sub.Done

		require.ErrorIs(t, s.Next(), ErrClosed)
		require.ErrorIs(t, s.AddTrack("/b.mp3"), ErrClosed)
		require.ErrorIs(t, s.WaitLoaded(t.Context()), ErrClosed)
		assert.Equal(t, 1, s.Len())

		late := s.Subscribe()
		<-late.Done
	})
}

func TestSession_ResultsAfterCloseAreDiscarded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(delayLoader{delay: time.Second})
		require.NoError(t, s.AddTrack("/a.mp3"))
		require.NoError(t, s.Close())

		time.Sleep(2 * time.Second)
		synctest.Wait()

		assert.True(t, s.Current().Pending)
	})
}

func TestSession_ConcurrentOperations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := newTestSession(delayLoader{delay: 10 * time.Millisecond})
		defer s.Close()

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Go(func() {
				for range 10 {
					_ = s.AddTrack("/track.mp3")
					_ = s.Next()
					_, _ = s.AdvanceOnEndOfTrack()
					if i%2 == 0 {
						_, _ = s.ToggleShuffle()
					}
					_ = s.Snapshot()
				}
			})
		}
		wg.Wait()
		require.NoError(t, s.WaitLoaded(t.Context()))

		assert.Equal(t, 80, s.Len())
		cur := s.CurrentIndex()
		assert.GreaterOrEqual(t, cur, 0)
		assert.Less(t, cur, 80)
		for _, tr := range s.Tracks() {
			assert.False(t, tr.Pending)
		}
	})
}

func TestSession_RestoreAndSnapshot(t *testing.T) {
	s := newTestSession(nil)
	defer s.Close()
	tr := queue.NewTrack("/a.mp3")
	tr.ApplyMetadata(queue.Metadata{Title: "A"})

	require.NoError(t, s.Restore(queue.Snapshot{
		Tracks:       []queue.Track{tr, queue.NewTrack("/b.mp3")},
		CurrentIndex: 1,
		RepeatMode:   queue.RepeatAll,
	}))

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, queue.RepeatAll, snap.RepeatMode)
	assert.Equal(t, "A", snap.Tracks[0].Title)
	assert.True(t, s.HasLocator("/b.mp3"))

	mode, err := s.CycleRepeatMode()
	require.NoError(t, err)
	assert.Equal(t, queue.RepeatOne, mode)
}
