package mscn

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
)

type Options struct {
	Logger *log.Logger

	// OnImportError decides what happens when a model cannot be imported.
	// Returning nil skips the object block and continues, any other error
	// aborts the decode. Without a hook the import error aborts.
	OnImportError func(path string, err error) error
}

type state int

const (
	stateTopLevel state = iota
	stateObjectBlock
	stateInstanceBlock
	stateLightBlock
	stateLightEntry
	stateParticleBlock
	stateParticleEntry
)

func (st state) String() string {
	switch st {
	case stateTopLevel:
		return "top level"
	case stateObjectBlock:
		return "object block"
	case stateInstanceBlock:
		return "instance block"
	case stateLightBlock:
		return "light block"
	case stateLightEntry:
		return "light entry"
	case stateParticleBlock:
		return "particle block"
	case stateParticleEntry:
		return "particle entry"
	}
	return "unknown"
}

type parser struct {
	toks []Token
	pos  int
	s    *scene.Scene
	opts Options
	log  *log.Logger

	st state

	object   int
	instance *scene.ObjectInstance

	light    scene.Light
	lightSet bool

	spawner scene.ParticleSpawner
}

func Decode(r io.Reader, s *scene.Scene, opts Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(scene.ErrFileAccess, "read: %v", err)
	}
	toks, err := Tokenize(data)
	if err != nil {
		return err
	}
	p := &parser{toks: toks, s: s, opts: opts, log: opts.Logger}
	if p.log == nil {
		p.log = log.New(io.Discard)
	}
	return p.run()
}

func DecodeFile(path string, s *scene.Scene, opts Options) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(scene.ErrFileAccess, "%s: %v", path, err)
	}
	defer f.Close()

	if err := Decode(f, s, opts); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	s.Path = path
	return nil
}

func (p *parser) next() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	t := p.toks[p.pos]
	p.pos++
	return t, true
}

func (p *parser) peek(offset int) (Token, bool) {
	if p.pos+offset >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos+offset], true
}

// word consumes the next token when it is not a brace.
func (p *parser) word() (string, bool) {
	t, ok := p.peek(0)
	if !ok || t.IsBrace() {
		return "", false
	}
	p.pos++
	return t.Text, true
}

func (p *parser) expectOpen() bool {
	if t, ok := p.peek(0); ok && t.IsOpen() {
		p.pos++
		return true
	}
	return false
}

func (p *parser) readFloat() (float32, error) {
	t, ok := p.next()
	if !ok {
		last := Token{}
		if len(p.toks) != 0 {
			last = p.toks[len(p.toks)-1]
		}
		return 0, errors.Wrapf(scene.ErrMalformedNumber, "line %d column %d: unexpected end of input", last.Line, last.Column)
	}
	f, err := strconv.ParseFloat(t.Text, 32)
	if err != nil {
		return 0, errors.Wrapf(scene.ErrMalformedNumber, "line %d column %d: %q", t.Line, t.Column, t.Text)
	}
	return float32(f), nil
}

func (p *parser) readVec3() (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i := range v {
		f, err := p.readFloat()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func (p *parser) skipUnknown(t Token) {
	p.log.Debug("skipping token", "state", p.st, "token", t.Text, "line", t.Line, "column", t.Column)
}

// skipBlock drops tokens until the block opened just before pos is closed.
func (p *parser) skipBlock() {
	depth := 1
	for depth > 0 {
		t, ok := p.next()
		if !ok {
			return
		}
		if t.IsOpen() {
			depth++
		} else if t.IsClose() {
			depth--
		}
	}
}

func (p *parser) run() error {
	for {
		t, ok := p.next()
		if !ok {
			p.finish()
			return nil
		}

		var err error
		switch p.st {
		case stateTopLevel:
			err = p.topLevel(t)
		case stateObjectBlock:
			p.objectBlock(t)
		case stateInstanceBlock:
			err = p.instanceBlock(t)
		case stateLightBlock:
			p.lightBlock(t)
		case stateLightEntry:
			err = p.lightEntry(t)
		case stateParticleBlock:
			p.particleBlock(t)
		case stateParticleEntry:
			err = p.particleEntry(t)
		}
		if err != nil {
			return err
		}
	}
}

func (p *parser) topLevel(t Token) error {
	switch {
	case scene.IsModelPath(t.Text):
		return p.beginObject(t)
	case t.Text == "c":
		pos, err := p.readVec3()
		if err != nil {
			return err
		}
		target, err := p.readVec3()
		if err != nil {
			return err
		}
		p.s.SetCamera(pos, target)
	case t.Text == "l":
		if !p.expectOpen() {
			p.log.Warn("light block without opening brace", "line", t.Line)
			return nil
		}
		p.st = stateLightBlock
	case t.Text == "p":
		if !p.expectOpen() {
			p.log.Warn("particle block without opening brace", "line", t.Line)
			return nil
		}
		p.st = stateParticleBlock
	default:
		p.skipUnknown(t)
	}
	return nil
}

func (p *parser) beginObject(t Token) error {
	if !p.expectOpen() {
		p.log.Warn("object without block", "path", t.Text, "line", t.Line)
		return nil
	}

	var vert, frag string
	if a, ok := p.peek(0); ok && !a.IsBrace() {
		if b, ok := p.peek(1); ok && !b.IsBrace() {
			vert, frag = a.Text, b.Text
			p.pos += 2
		}
	}

	idx, created, err := p.s.EnsureObject(t.Text, vert, frag)
	if err != nil {
		if !errors.Is(err, scene.ErrImport) || p.opts.OnImportError == nil {
			return err
		}
		if herr := p.opts.OnImportError(t.Text, err); herr != nil {
			return herr
		}
		p.skipBlock()
		return nil
	}
	if !created {
		p.s.RegisterShaderPair(vert, frag)
	}
	p.object = idx
	p.st = stateObjectBlock
	return nil
}

func (p *parser) objectBlock(t Token) {
	switch {
	case t.IsOpen():
		o, _ := p.s.Object(p.object)
		p.instance = scene.NewObjectInstance(o)
		p.st = stateInstanceBlock
	case t.IsClose():
		p.st = stateTopLevel
	default:
		p.skipUnknown(t)
	}
}

func (p *parser) instanceBlock(t Token) error {
	inst := p.instance
	switch t.Text {
	case "}":
		p.st = stateObjectBlock
		return p.commitInstance()
	case "v":
		if name, ok := p.word(); ok {
			inst.VertexShader = name
		}
	case "f":
		if name, ok := p.word(); ok {
			inst.FragmentShader = name
		}
	case "t":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		inst.SetTranslation(v)
	case "r":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		inst.SetRotation(v)
	case "s":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		inst.SetScale(v)
	default:
		p.skipUnknown(t)
	}
	return nil
}

func (p *parser) commitInstance() error {
	inst := p.instance
	p.instance = nil
	return p.s.AppendInstance(p.object, inst)
}

func (p *parser) lightBlock(t Token) {
	switch {
	case t.IsOpen():
		p.light = scene.Light{}
		p.lightSet = false
		p.st = stateLightEntry
	case t.IsClose():
		p.st = stateTopLevel
	default:
		p.skipUnknown(t)
	}
}

func (p *parser) lightEntry(t Token) error {
	switch t.Text {
	case "}":
		p.st = stateLightBlock
		p.commitLight(t)
	case "p", "d":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		p.light.Value = v
		p.lightSet = true
		if t.Text == "d" {
			p.light.Type = scene.DirectionalLight
		} else {
			p.light.Type = scene.PointLight
		}
	case "c":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		p.light.Color = v
	default:
		p.skipUnknown(t)
	}
	return nil
}

func (p *parser) commitLight(t Token) {
	if !p.lightSet {
		p.log.Warn("dropping light without position or direction", "line", t.Line)
		return
	}
	p.s.AddLight(p.light)
	p.lightSet = false
}

func (p *parser) particleBlock(t Token) {
	switch {
	case t.IsOpen():
		p.spawner = scene.ParticleSpawner{}
		p.spawner.VertexShader, _ = p.word()
		p.spawner.FragmentShader, _ = p.word()
		p.st = stateParticleEntry
	case t.IsClose():
		p.st = stateTopLevel
	default:
		p.skipUnknown(t)
	}
}

func (p *parser) particleEntry(t Token) error {
	switch t.Text {
	case "}":
		p.st = stateParticleBlock
		p.commitSpawner(t)
	case "p":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		p.spawner.Position = v
	case "c":
		v, err := p.readVec3()
		if err != nil {
			return err
		}
		p.spawner.Color = v
	default:
		p.skipUnknown(t)
	}
	return nil
}

func (p *parser) commitSpawner(t Token) {
	if p.spawner.VertexShader == "" || p.spawner.FragmentShader == "" {
		p.log.Warn("dropping particle spawner without shaders", "line", t.Line)
		return
	}
	p.s.AddParticleSpawner(p.spawner)
}

// finish keeps whatever an unterminated input left open.
func (p *parser) finish() {
	if p.st == stateTopLevel {
		return
	}
	last := Token{}
	if len(p.toks) != 0 {
		last = p.toks[len(p.toks)-1]
	}
	p.log.Warn("unexpected end of scene", "state", p.st, "line", last.Line)

	switch p.st {
	case stateInstanceBlock:
		if err := p.commitInstance(); err != nil {
			p.log.Warn("dropping unterminated instance", "err", err)
		}
	case stateLightEntry:
		p.commitLight(last)
	case stateParticleEntry:
		p.commitSpawner(last)
	}
	p.st = stateTopLevel
}
