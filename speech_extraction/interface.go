package speech_extraction

// Archive keeps a copy of every captured utterance.
type Archive interface {
	Save(samples []int16, sampleRate int) (string, error)
}
