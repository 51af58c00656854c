package speech_extraction

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

type archiveImpl struct {
	fileSys afero.Fs
	dir     string
	now     func() time.Time
}

type Config struct {
	FileSys afero.Fs
	Dir     string
}

func New(cfg *Config) (Archive, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	if err := cfg.FileSys.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}

	return &archiveImpl{
		fileSys: cfg.FileSys,
		dir:     cfg.Dir,
		now:     time.Now,
	}, nil
}

// Save writes the samples as a 16-bit mono wave file and returns its path.
func (a *archiveImpl) Save(samples []int16, sampleRate int) (string, error) {
	waveFilename := filepath.Join(a.dir, "utterance_"+strconv.FormatInt(a.now().UnixNano(), 10)+".wav")

	waveFile, err := a.fileSys.Create(waveFilename)
	if err != nil {
		return "", err
	}

	param := wave.WriterParam{
		Out:           waveFile,
		Channel:       1,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	}

	waveWriter, err := wave.NewWriter(param)
	if err != nil {
		_ = waveFile.Close()
		return "", err
	}

	if _, err = waveWriter.WriteSample16(samples); err != nil {
		_ = waveWriter.Close()
		return "", err
	}

	// closing the writer patches the header sizes and closes the file
	if err := waveWriter.Close(); err != nil {
		return "", err
	}

	return waveFilename, nil
}
