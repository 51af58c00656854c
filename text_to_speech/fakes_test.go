package text_to_speech

import (
	"context"
	"sync"

	"github.com/spf13/afero"
)

type fakeSynthesizer struct {
	name  string
	err   error
	mu    sync.Mutex
	calls []string
}

func (f *fakeSynthesizer) Name() string {
	return f.name
}

func (f *fakeSynthesizer) Speak(_ context.Context, text string, language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, language+":"+text)

	return f.err
}

// fakePlayer records which clip paths existed at the time they were played.
type fakePlayer struct {
	fileSys afero.Fs
	err     error
	played  []string
	sizes   []int64
}

func (p *fakePlayer) Play(_ context.Context, path string) error {
	p.played = append(p.played, path)

	if info, err := p.fileSys.Stat(path); err == nil {
		p.sizes = append(p.sizes, info.Size())
	} else {
		p.sizes = append(p.sizes, -1)
	}

	return p.err
}

func leftoverClips(fileSys afero.Fs, dir string) int {
	matches, _ := afero.Glob(fileSys, dir+"/speak_*.wav")
	return len(matches)
}
