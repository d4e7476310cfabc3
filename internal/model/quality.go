package model

// QualityMode selects how a stream is chosen
type QualityMode int

const (
	// QualityHighest picks the highest resolution video stream
	QualityHighest QualityMode = iota
	// QualityExact picks a stream with an exact resolution label
	QualityExact
	// QualityAudioOnly picks an audio-only stream
	QualityAudioOnly
)

// QualityPreference is the user's stream selection intent for a run
type QualityPreference struct {
	Mode       QualityMode
	Resolution string // set only for QualityExact, e.g. "720p"
}

// Highest returns the highest-resolution preference
func Highest() QualityPreference {
	return QualityPreference{Mode: QualityHighest}
}

// ExactResolution returns a preference for the given resolution label
func ExactResolution(label string) QualityPreference {
	return QualityPreference{Mode: QualityExact, Resolution: label}
}

// AudioOnly returns the audio-only preference
func AudioOnly() QualityPreference {
	return QualityPreference{Mode: QualityAudioOnly}
}

// String returns a human readable form of the preference
func (q QualityPreference) String() string {
	switch q.Mode {
	case QualityExact:
		return q.Resolution
	case QualityAudioOnly:
		return "audio"
	default:
		return "highest"
	}
}
