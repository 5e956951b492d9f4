package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

func writeWAV(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: DefaultSampleRate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(441), format); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return path
}

func TestVolumeConversion(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{1.0, 0},
		{0.5, -1},
		{0.25, -2},
		{0.0, -100},
	}

	for _, tt := range tests {
		if got := volumeToExp(tt.vol); got != tt.want {
			t.Errorf("volumeToExp(%f) = %f, want %f", tt.vol, got, tt.want)
		}
	}
}

func TestNewManager(t *testing.T) {
	m := New(nil)
	if m.MasterVolume() != 1.0 {
		t.Errorf("default master volume = %f, want 1.0", m.MasterVolume())
	}
	if m.MusicVolume() != 0.7 {
		t.Errorf("default music volume = %f, want 0.7", m.MusicVolume())
	}
	if m.SFXVolume() != 1.0 {
		t.Errorf("default SFX volume = %f, want 1.0", m.SFXVolume())
	}
	if m.IsInitialized() {
		t.Error("new manager should not be initialized")
	}
}

func TestSetVolume(t *testing.T) {
	m := New(nil)

	m.SetMasterVolume(0.5)
	if m.MasterVolume() != 0.5 {
		t.Errorf("master volume = %f, want 0.5", m.MasterVolume())
	}
	m.SetMasterVolume(2.0)
	if m.MasterVolume() != 1.0 {
		t.Errorf("master volume = %f, want 1.0 (clamped)", m.MasterVolume())
	}
	m.SetSFXVolume(-1.0)
	if m.SFXVolume() != 0.0 {
		t.Errorf("sfx volume = %f, want 0.0 (clamped)", m.SFXVolume())
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	good := writeWAV(t, dir, "thud.wav")
	bad := filepath.Join(dir, "noise.wav")
	if err := os.WriteFile(bad, []byte("not a wav file"), 0644); err != nil {
		t.Fatal(err)
	}

	m := New(nil)
	if err := m.Preload(good); err != nil {
		t.Fatalf("Preload(%s) error = %v", good, err)
	}
	if !m.Cached(good) {
		t.Error("preloaded sound should be cached")
	}
	// A second preload is served from the cache even if the file is gone.
	if err := os.Remove(good); err != nil {
		t.Fatal(err)
	}
	if err := m.Preload(good); err != nil {
		t.Errorf("cached Preload error = %v", err)
	}

	if err := m.Preload(bad); err == nil {
		t.Error("expected decode error")
	}
	if m.Cached(bad) {
		t.Error("undecodable sound should not be cached")
	}
	if err := m.Preload(filepath.Join(dir, "missing.wav")); err == nil {
		t.Error("expected read error")
	}
}

func TestPlayBeforeInit(t *testing.T) {
	m := New(nil)
	path := writeWAV(t, t.TempDir(), "click.wav")
	if err := m.Play(path); err != ErrNotInitialized {
		t.Errorf("Play() error = %v, want ErrNotInitialized", err)
	}
	if !m.Cached(path) {
		t.Error("Play should cache the sound")
	}
	if err := m.PlayMusic(path, true); err != ErrNotInitialized {
		t.Errorf("PlayMusic() error = %v, want ErrNotInitialized", err)
	}
}
