package download

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/ytdl-cli/internal/model"
)

func muxed(id, res string) model.StreamDescriptor {
	return model.StreamDescriptor{ID: id, Resolution: res, QualityLabel: res, Container: "mp4"}
}

func videoOnly(id, res string) model.StreamDescriptor {
	return model.StreamDescriptor{ID: id, Resolution: res, QualityLabel: res, Container: "mp4", VideoOnly: true}
}

func audio(id string) model.StreamDescriptor {
	return model.StreamDescriptor{ID: id, Container: "m4a", AudioOnly: true}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name         string
		streams      []model.StreamDescriptor
		pref         model.QualityPreference
		expectedID   string
		expectFound  bool
		expectFellBk bool
	}{
		{
			name:        "highest picks tallest muxed stream",
			streams:     []model.StreamDescriptor{muxed("18", "360p"), muxed("22", "720p"), audio("140")},
			pref:        model.Highest(),
			expectedID:  "22",
			expectFound: true,
		},
		{
			name:        "highest prefers muxed over taller video-only",
			streams:     []model.StreamDescriptor{videoOnly("137", "1080p"), muxed("22", "720p")},
			pref:        model.Highest(),
			expectedID:  "22",
			expectFound: true,
		},
		{
			name:        "highest falls to video-only without muxed",
			streams:     []model.StreamDescriptor{videoOnly("135", "480p"), videoOnly("137", "1080p"), audio("140")},
			pref:        model.Highest(),
			expectedID:  "137",
			expectFound: true,
		},
		{
			name:        "highest keeps resolver order on ties",
			streams:     []model.StreamDescriptor{muxed("a", "720p"), muxed("b", "720p")},
			pref:        model.Highest(),
			expectedID:  "a",
			expectFound: true,
		},
		{
			name:    "highest with audio only streams finds nothing",
			streams: []model.StreamDescriptor{audio("140"), audio("251")},
			pref:    model.Highest(),
		},
		{
			name:        "exact match muxed",
			streams:     []model.StreamDescriptor{muxed("18", "360p"), muxed("22", "720p")},
			pref:        model.ExactResolution("360p"),
			expectedID:  "18",
			expectFound: true,
		},
		{
			name:        "exact prefers muxed over earlier video-only",
			streams:     []model.StreamDescriptor{videoOnly("136", "720p"), muxed("22", "720p")},
			pref:        model.ExactResolution("720p"),
			expectedID:  "22",
			expectFound: true,
		},
		{
			name:        "exact accepts video-only when no muxed match",
			streams:     []model.StreamDescriptor{muxed("18", "360p"), videoOnly("136", "720p")},
			pref:        model.ExactResolution("720p"),
			expectedID:  "136",
			expectFound: true,
		},
		{
			name:         "exact missing falls back to highest",
			streams:      []model.StreamDescriptor{muxed("480", "480p"), muxed("1080", "1080p")},
			pref:         model.ExactResolution("720p"),
			expectedID:   "1080",
			expectFound:  true,
			expectFellBk: true,
		},
		{
			name:         "exact missing with nothing to fall back to",
			streams:      []model.StreamDescriptor{audio("140")},
			pref:         model.ExactResolution("720p"),
			expectFellBk: true,
		},
		{
			name:        "audio picks first audio-only stream",
			streams:     []model.StreamDescriptor{muxed("22", "720p"), audio("140"), audio("251")},
			pref:        model.AudioOnly(),
			expectedID:  "140",
			expectFound: true,
		},
		{
			name:    "audio with no audio-only streams finds nothing",
			streams: []model.StreamDescriptor{muxed("22", "720p"), videoOnly("137", "1080p")},
			pref:    model.AudioOnly(),
		},
		{
			name: "empty stream list",
			pref: model.Highest(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.streams, tt.pref)

			assert.Equal(t, tt.expectFound, sel.Found)
			assert.Equal(t, tt.expectFellBk, sel.FellBack)
			if tt.expectFound {
				assert.Equal(t, tt.expectedID, sel.Stream.ID)
			}
		})
	}
}

func TestSelect_Deterministic(t *testing.T) {
	streams := []model.StreamDescriptor{
		videoOnly("137", "1080p"), muxed("18", "360p"), muxed("22", "720p"), muxed("22b", "720p"), audio("140"), audio("251"),
	}
	prefs := []model.QualityPreference{
		model.Highest(), model.ExactResolution("720p"), model.ExactResolution("144p"), model.AudioOnly(),
	}

	for _, pref := range prefs {
		first := Select(streams, pref)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, Select(streams, pref), "preference %s", pref)
		}
	}
}

func TestSelect_FallbackEqualsHighest(t *testing.T) {
	sets := [][]model.StreamDescriptor{
		{muxed("a", "480p"), muxed("b", "1080p")},
		{videoOnly("c", "1440p"), videoOnly("d", "2160p"), audio("e")},
		{audio("f")},
		nil,
	}

	for _, streams := range sets {
		highest := Select(streams, model.Highest())
		fallback := Select(streams, model.ExactResolution("9999p"))

		assert.True(t, fallback.FellBack)
		assert.Equal(t, highest.Found, fallback.Found)
		assert.Equal(t, highest.Stream, fallback.Stream)
	}
}
