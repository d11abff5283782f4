package blockkit

// Sound names an audio trigger
type Sound string

// Audio triggers fired by the interpreter
const (
	SoundStep         Sound = "step"          // Move
	SoundTurn         Sound = "turn"          // Turn
	SoundSuccess      Sound = "success"       // Won
	SoundAlertFanfare Sound = "alert-fanfare" // Say begins
	SoundPop          Sound = "pop"           // stack game drop
)

// AudioSink plays named sounds. Playback is fire-and-forget.
type AudioSink interface {
	Play(sound Sound)
}

// AudioFunc adapts a function to AudioSink
type AudioFunc func(sound Sound)

// Play implements AudioSink
func (f AudioFunc) Play(sound Sound) { f(sound) }

// PlaySound plays through sink and swallows any failure, including a nil sink.
func PlaySound(sink AudioSink, sound Sound) {
	if sink == nil {
		return
	}
	defer func() { _ = recover() }()
	sink.Play(sound)
}
