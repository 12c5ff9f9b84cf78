package cdaudio

import (
	"pcecd/emu/log"
)

// Player streams CD-DA samples. The frames are interleaved stereo samples
// (left, right, left, right...).
type Player struct {
	frames []int16

	pos     int // current frame
	playing bool
	loop    bool

	left, right int16
}

func NewPlayer() *Player {
	return &Player{}
}

// Load replaces the track being played. A trailing odd sample is dropped.
func (p *Player) Load(frames []int16) {
	p.frames = frames[:len(frames)&^1]
	p.pos = 0
	p.left, p.right = 0, 0
	p.playing = false
}

func (p *Player) Play(loop bool) {
	log.ModSound.DebugZ("cdda play").
		Int("frames", p.Frames()).
		Bool("loop", loop).
		End()
	p.playing = p.Frames() > 0
	p.loop = loop
}

func (p *Player) Stop() {
	p.playing = false
	p.left, p.right = 0, 0
}

func (p *Player) Playing() bool { return p.playing }

func (p *Player) Frames() int { return len(p.frames) / 2 }

// Step latches the next stereo frame.
func (p *Player) Step() {
	if !p.playing {
		return
	}
	if p.pos >= p.Frames() {
		if !p.loop || p.Frames() == 0 {
			log.ModSound.DebugZ("cdda end").End()
			p.Stop()
			return
		}
		p.pos = 0
	}
	p.left, p.right = p.frames[2*p.pos], p.frames[2*p.pos+1]
	p.pos++
}

func (p *Player) LeftSample() int16  { return p.left }
func (p *Player) RightSample() int16 { return p.right }
