// Package audio plays sound effects and music through beep. Manager
// implements scene.Audio: sounds are addressed by file path and their bytes
// are cached after the first load.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/glops/pkg/math"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned by playback before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Manager handles sound playback.
type Manager struct {
	mu  sync.RWMutex
	log *zap.Logger

	initialized bool
	sampleRate  beep.SampleRate
	muted       bool

	// Raw WAV bytes by path.
	cache map[string][]byte

	music        beep.StreamSeekCloser
	musicCtrl    *beep.Ctrl
	musicVolume  *effects.Volume
	musicPlaying bool
	musicPath    string

	// Volume settings (0.0 to 1.0)
	masterVolume float64
	musicVolLvl  float64
	sfxVolLvl    float64

	// SFX mixer for concurrent sound effects
	sfxMixer *beep.Mixer
}

// New creates a new audio manager. A nil log discards output.
func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:          log,
		sampleRate:   DefaultSampleRate,
		cache:        make(map[string][]byte),
		masterVolume: 1.0,
		musicVolLvl:  0.7,
		sfxVolLvl:    1.0,
		sfxMixer:     &beep.Mixer{},
	}
}

// Init opens the speaker at sampleRate. Zero means DefaultSampleRate.
func (m *Manager) Init(sampleRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if sampleRate > 0 {
		m.sampleRate = beep.SampleRate(sampleRate)
	}
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.sfxMixer)

	m.initialized = true
	m.log.Info("audio initialized", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close shuts down playback. Cached sounds are kept.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopMusicLocked()
	if m.initialized {
		speaker.Clear()
	}
	m.initialized = false
}

// IsInitialized returns whether the speaker is open.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMuted silences every sound played afterwards.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
	m.updateMusicVolume()
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = math.Clamp(vol, 0, 1)
	m.updateMusicVolume()
}

// SetMusicVolume sets the music volume (0.0 to 1.0).
func (m *Manager) SetMusicVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicVolLvl = math.Clamp(vol, 0, 1)
	m.updateMusicVolume()
}

// SetSFXVolume sets the sound effect volume (0.0 to 1.0).
func (m *Manager) SetSFXVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sfxVolLvl = math.Clamp(vol, 0, 1)
}

// MasterVolume returns the master volume.
func (m *Manager) MasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// MusicVolume returns the music volume.
func (m *Manager) MusicVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicVolLvl
}

// SFXVolume returns the sound effect volume.
func (m *Manager) SFXVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sfxVolLvl
}

func (m *Manager) updateMusicVolume() {
	if m.musicVolume == nil {
		return
	}
	vol := m.masterVolume * m.musicVolLvl
	m.musicVolume.Silent = m.muted || vol <= 0
	m.musicVolume.Volume = volumeToExp(vol)
}

// volumeToExp converts a 0-1 volume to the base-2 exponent used by
// effects.Volume: 1 is 0, 0.5 is -1, 0.25 is -2.
func volumeToExp(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return gomath.Log2(vol)
}

// Preload reads and checks the sound at path so later plays do not touch
// the disk.
func (m *Manager) Preload(path string) error {
	_, err := m.load(path)
	return err
}

// Cached reports whether path has been loaded.
func (m *Manager) Cached(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[path]
	return ok
}

func (m *Manager) load(path string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.cache[path]
	m.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sound: %w", err)
	}
	s, _, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	s.Close()

	m.mu.Lock()
	m.cache[path] = data
	m.mu.Unlock()
	m.log.Debug("sound cached", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// decode opens a cached sound resampled to the speaker rate.
func (m *Manager) decode(data []byte) (beep.StreamSeekCloser, beep.Streamer, error) {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("decode wav: %w", err)
	}
	if format.SampleRate != m.sampleRate {
		return streamer, beep.Resample(4, format.SampleRate, m.sampleRate, streamer), nil
	}
	return streamer, streamer, nil
}

// Play mixes the sound at path into the effect channel. Playback while
// muted is a no-op.
func (m *Manager) Play(path string) error {
	data, err := m.load(path)
	if err != nil {
		return err
	}

	m.mu.RLock()
	initialized, muted := m.initialized, m.muted
	vol := m.masterVolume * m.sfxVolLvl
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if muted {
		return nil
	}

	_, resampled, err := m.decode(data)
	if err != nil {
		return err
	}
	speaker.Lock()
	m.sfxMixer.Add(&effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToExp(vol),
		Silent:   vol <= 0,
	})
	speaker.Unlock()
	return nil
}

// PlayMusic replaces the current music track. If loop is set the track
// restarts when it ends.
func (m *Manager) PlayMusic(path string, loop bool) error {
	data, err := m.load(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	m.stopMusicLocked()

	streamer, resampled, err := m.decode(data)
	if err != nil {
		return err
	}
	var s beep.Streamer = resampled
	if loop {
		s = &loopStreamer{streamer: streamer, resampled: resampled}
	}

	m.musicCtrl = &beep.Ctrl{Streamer: s}
	m.musicVolume = &effects.Volume{Streamer: m.musicCtrl, Base: 2}
	m.updateMusicVolume()
	m.music = streamer
	m.musicPath = path
	m.musicPlaying = true

	// The callback runs under the speaker lock, which stopMusicLocked takes
	// while holding m.mu, so the flag is cleared from another goroutine.
	ctrl := m.musicCtrl
	speaker.Play(beep.Seq(m.musicVolume, beep.Callback(func() {
		go func() {
			m.mu.Lock()
			if m.musicCtrl == ctrl {
				m.musicPlaying = false
			}
			m.mu.Unlock()
		}()
	})))
	m.log.Info("music started", zap.String("path", path), zap.Bool("loop", loop))
	return nil
}

// StopMusic stops the current music track.
func (m *Manager) StopMusic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopMusicLocked()
}

func (m *Manager) stopMusicLocked() {
	if m.musicCtrl != nil {
		speaker.Lock()
		m.musicCtrl.Paused = true
		speaker.Unlock()
	}
	if m.music != nil {
		m.music.Close()
		m.music = nil
	}
	m.musicCtrl = nil
	m.musicVolume = nil
	m.musicPlaying = false
	m.musicPath = ""
}

// IsMusicPlaying returns whether a music track is playing.
func (m *Manager) IsMusicPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicPlaying
}

// MusicPath returns the path of the current music track.
func (m *Manager) MusicPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.musicPath
}

// loopStreamer rewinds its source when it runs out.
type loopStreamer struct {
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	rewound := false
	for filled < len(samples) {
		n, ok := l.resampled.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			rewound = false
			continue
		}
		if rewound {
			// Nothing to play even from the start.
			return filled, filled > 0
		}
		if err := l.streamer.Seek(0); err != nil {
			return filled, filled > 0
		}
		rewound = true
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
