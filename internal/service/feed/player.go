package feed

import "github.com/reelfeed/server/internal/repository/session"

// computeSlots derives the state of the three mounted players around
// currentIndex. Pausing the neighbours is decided in the same pass that
// decides the current slot, so no transition can leave two players
// audible:
//   - position != 0 always ends paused (or idle while its URL resolves)
//   - position 0 plays only when the session has seen a qualifying user
//     input; before that the tap-to-play overlay is shown instead
//   - a locked current episode is never played; the caller opens the
//     unlock gate for it
func computeSlots(episodes []session.Episode, playURLs map[string]string, currentIndex int, interacted bool) []Slot {
	slots := make([]Slot, 0, 3)

	for position := -1; position <= 1; position++ {
		index := currentIndex + position
		if index < 0 || index >= len(episodes) {
			continue
		}

		episode := episodes[index]
		playURL := playURLs[episode.Id]

		slot := Slot{
			Position:  position,
			EpisodeId: episode.Id,
			Title:     episode.Title,
			PlayURL:   playURL,
			IsLocked:  episode.IsLocked,
		}

		switch {
		case episode.IsLocked:
			slot.State = SlotIdle
		case playURL == "":
			slot.State = SlotLoading
		case position != 0:
			slot.State = SlotReadyPaused
		case !interacted:
			slot.State = SlotReadyPaused
			slot.ShowTapOverlay = true
		default:
			slot.State = SlotPlaying
		}

		slots = append(slots, slot)
	}

	return slots
}

// currentSlot returns the position-0 slot, if mounted.
func currentSlot(slots []Slot) (Slot, bool) {
	for _, slot := range slots {
		if slot.Position == 0 {
			return slot, true
		}
	}

	return Slot{}, false
}
