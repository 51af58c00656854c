package port_audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"jarvis-translator/audio_device"
)

type portAudioSource struct {
	deviceIndex int
	logger      *zap.SugaredLogger

	mu          sync.Mutex
	initialized bool
}

type Config struct {
	// DeviceIndex selects the input device; a negative value uses the system default.
	DeviceIndex int
	Logger      *zap.SugaredLogger
}

// Source is an audio_device.Source backed by PortAudio. Close must be called to
// release the library once no stream is needed anymore.
type Source interface {
	audio_device.Source
	Close() error
}

func New(cfg *Config) (Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &portAudioSource{
		deviceIndex: cfg.DeviceIndex,
		logger:      logger,
	}, nil
}

func (s *portAudioSource) Open(sampleRate int, frameLength int) (audio_device.Stream, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	device, err := s.inputDevice()
	if err != nil {
		return nil, err
	}

	in := make([]int16, frameLength)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: frameLength,
	}

	stream, err := portaudio.OpenStream(params, in)
	if err != nil {
		return nil, fmt.Errorf("open input stream on %q: %w", device.Name, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	s.logger.Debugw("input stream opened", "device", device.Name, "sampleRate", sampleRate, "frameLength", frameLength)

	return &portAudioStream{stream: stream, in: in, logger: s.logger}, nil
}

func (s *portAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}

	s.initialized = false

	return portaudio.Terminate()
}

func (s *portAudioSource) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	s.initialized = true

	return nil
}

func (s *portAudioSource) inputDevice() (*portaudio.DeviceInfo, error) {
	if s.deviceIndex < 0 {
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	if s.deviceIndex >= len(devices) {
		return nil, fmt.Errorf("input device index %d out of range (%d devices)", s.deviceIndex, len(devices))
	}

	device := devices[s.deviceIndex]
	if device.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", s.deviceIndex, device.Name)
	}

	return device, nil
}

type portAudioStream struct {
	stream *portaudio.Stream
	in     []int16
	logger *zap.SugaredLogger
	closed bool
}

func (p *portAudioStream) Read() ([]int16, error) {
	err := p.stream.Read()
	if errors.Is(err, portaudio.InputOverflowed) {
		// an overflow drops samples but the frame is still usable
		p.logger.Debugw("input overflowed")
		err = nil
	}
	if err != nil {
		return nil, err
	}

	return p.in, nil
}

func (p *portAudioStream) Close() error {
	if p.closed {
		return nil
	}

	p.closed = true

	stopErr := p.stream.Stop()
	closeErr := p.stream.Close()

	if stopErr != nil {
		return stopErr
	}

	return closeErr
}
