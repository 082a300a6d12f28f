package queue

// Next advances on an explicit user request.
//
// Without shuffle the cursor steps forward and wraps from the last track to
// the first. With shuffle the next track is drawn from the current cycle; a
// cycle down to its last track is refilled first so the user is never stuck.
// The repeat mode is ignored, and CurrentTrackChanged is always emitted, even
// when the queue holds a single track.
func (q *Queue) Next() error {
	if len(q.tracks) == 0 {
		return ErrEmptyQueue
	}

	if q.shuffle {
		if q.bag.Len() <= 1 {
			q.bag.Reset(len(q.tracks))
		}
		// Refill is set so a pick always exists.
		q.currentIndex, _ = q.bag.Take(q.currentIndex, len(q.tracks), true)
	} else {
		q.currentIndex = (q.currentIndex + 1) % len(q.tracks)
	}

	q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	return nil
}

// AdvanceOnEndOfTrack advances after the current track finished playing.
//
// It returns false when playback should stop: the end of the queue (or of
// the shuffle cycle) was reached and the repeat mode is not RepeatAll. The
// cursor is left untouched in that case. RepeatOne replays the current track.
func (q *Queue) AdvanceOnEndOfTrack() (bool, error) {
	if len(q.tracks) == 0 {
		return false, ErrEmptyQueue
	}

	switch {
	case q.repeatMode == RepeatOne:
		// Same index; listeners restart the track.
	case q.shuffle:
		next, ok := q.bag.Take(q.currentIndex, len(q.tracks), q.repeatMode == RepeatAll)
		if !ok {
			return false, nil
		}
		q.currentIndex = next
	case q.currentIndex == len(q.tracks)-1:
		if q.repeatMode != RepeatAll {
			return false, nil
		}
		q.currentIndex = 0
	default:
		q.currentIndex++
	}

	q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	return true, nil
}

// Previous steps back, wrapping from the first track to the last.
// It does nothing while shuffle is enabled.
func (q *Queue) Previous() error {
	if q.shuffle {
		return nil
	}
	if len(q.tracks) == 0 {
		return ErrEmptyQueue
	}

	if q.currentIndex == 0 {
		q.currentIndex = len(q.tracks) - 1
	} else {
		q.currentIndex--
	}

	q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	return nil
}
