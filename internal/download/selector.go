package download

import (
	"github.com/ytget/ytdl-cli/internal/model"
)

// Selection is the result of choosing one stream for a preference
type Selection struct {
	Stream   model.StreamDescriptor
	Found    bool
	FellBack bool // exact resolution was unavailable, Highest was used instead
}

// Select picks exactly one stream for pref, or reports none found.
// The result depends only on the order and content of streams.
func Select(streams []model.StreamDescriptor, pref model.QualityPreference) Selection {
	switch pref.Mode {
	case model.QualityAudioOnly:
		return selectAudio(streams)
	case model.QualityExact:
		if sel := selectExact(streams, pref.Resolution); sel.Found {
			return sel
		}
		sel := selectHighest(streams)
		sel.FellBack = true
		return sel
	default:
		return selectHighest(streams)
	}
}

func selectAudio(streams []model.StreamDescriptor) Selection {
	for _, s := range streams {
		if s.AudioOnly {
			return Selection{Stream: s, Found: true}
		}
	}
	return Selection{}
}

// selectHighest prefers muxed streams and only considers video-only
// streams when no muxed stream exists
func selectHighest(streams []model.StreamDescriptor) Selection {
	if sel := highestOf(streams, model.StreamDescriptor.Muxed); sel.Found {
		return sel
	}
	return highestOf(streams, func(s model.StreamDescriptor) bool { return s.VideoOnly })
}

func highestOf(streams []model.StreamDescriptor, keep func(model.StreamDescriptor) bool) Selection {
	var best Selection
	for _, s := range streams {
		if !keep(s) {
			continue
		}
		// strict comparison keeps the earliest stream on ties
		if !best.Found || s.Height() > best.Stream.Height() {
			best = Selection{Stream: s, Found: true}
		}
	}
	return best
}

func selectExact(streams []model.StreamDescriptor, resolution string) Selection {
	if resolution == "" {
		return Selection{}
	}

	var videoOnly *model.StreamDescriptor
	for i := range streams {
		s := streams[i]
		if s.AudioOnly || s.Resolution != resolution {
			continue
		}
		if s.Muxed() {
			return Selection{Stream: s, Found: true}
		}
		if videoOnly == nil {
			videoOnly = &streams[i]
		}
	}
	if videoOnly != nil {
		return Selection{Stream: *videoOnly, Found: true}
	}
	return Selection{}
}
