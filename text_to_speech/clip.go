package text_to_speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
)

// clipPlayer owns the lifetime of a speech job's temporary audio file.
type clipPlayer struct {
	fileSys afero.Fs
	tempDir string
	player  audio_device.Player
	logger  *zap.SugaredLogger
}

func newClipPlayer(fileSys afero.Fs, tempDir string, player audio_device.Player, logger *zap.SugaredLogger) (*clipPlayer, error) {
	if fileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if player == nil {
		return nil, fmt.Errorf("player is nil")
	}

	if tempDir == "" {
		tempDir = os.TempDir()
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &clipPlayer{
		fileSys: fileSys,
		tempDir: tempDir,
		player:  player,
		logger:  logger,
	}, nil
}

// play writes a uniquely named wave file, plays it and removes it again on
// every path.
func (c *clipPlayer) play(ctx context.Context, write func(f afero.File) error) error {
	path := filepath.Join(c.tempDir, "speak_"+uuid.NewString()+".wav")

	f, err := c.fileSys.Create(path)
	if err != nil {
		return fmt.Errorf("create clip: %w", err)
	}

	defer func() {
		if err := c.fileSys.Remove(path); err != nil {
			c.logger.Warnw("failed to remove clip", "path", path, "error", err)
		}
	}()

	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write clip: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close clip: %w", err)
	}

	if err := c.player.Play(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}

	return nil
}
