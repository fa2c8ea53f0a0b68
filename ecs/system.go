package ecs

import (
	"reflect"
	"runtime"

	"github.com/rotisserie/eris"
)

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query and
// Res fields, which the Scheduler binds on Register, as well as custom state
// fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame) error
}

// SystemParam is implemented by values a system can receive from the World,
// such as *Query[T] and *Res[T].
type SystemParam interface {
	Init(w *World)
}

type paramValidator interface {
	validate() error
}

var (
	systemParamType = reflect.TypeFor[SystemParam]()
	worldPtrType    = reflect.TypeFor[*World]()
	commandsPtrType = reflect.TypeFor[*Commands]()
	framePtrType    = reflect.TypeFor[*UpdateFrame]()
	errorType       = reflect.TypeFor[error]()
)

type paramKind uint8

const (
	paramWorld paramKind = iota
	paramCommands
	paramFrame
	paramInjected
)

// FuncSystem adapts a plain function into a System. See IntoSystem.
type FuncSystem struct {
	name         string
	fn           reflect.Value
	kinds        []paramKind
	types        []reflect.Type
	returnsValue bool
	returnsError bool

	world    *World
	injected []reflect.Value
	args     []reflect.Value
}

// IntoSystem adapts fn into a System. Parameters may be:
//   - *World, which must then be the only parameter
//   - *Commands and *UpdateFrame of the running frame
//   - any SystemParam pointer, such as *Query[T] or *Res[T], created and bound
//     to the World on first run
//
// fn may return nothing, an error, or a value and an error.
func IntoSystem(fn any) (*FuncSystem, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, eris.Wrapf(ErrInvalidSystem, "%T is not a function", fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, eris.Wrapf(ErrInvalidSystem, "%s is variadic", t)
	}

	s := &FuncSystem{
		name:  runtime.FuncForPC(v.Pointer()).Name(),
		fn:    v,
		kinds: make([]paramKind, t.NumIn()),
		types: make([]reflect.Type, t.NumIn()),
	}
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		s.types[i] = in
		switch {
		case in == worldPtrType:
			if t.NumIn() != 1 {
				return nil, eris.Wrapf(ErrInvalidSystem, "%s: *World must be the only parameter", t)
			}
			s.kinds[i] = paramWorld
		case in == commandsPtrType:
			s.kinds[i] = paramCommands
		case in == framePtrType:
			s.kinds[i] = paramFrame
		case in.Kind() == reflect.Ptr && in.Implements(systemParamType):
			s.kinds[i] = paramInjected
		default:
			return nil, eris.Wrapf(ErrInvalidSystem, "%s: unsupported parameter %s", t, in)
		}
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			return nil, eris.Wrapf(ErrInvalidSystem, "%s: single result must be error", t)
		}
		s.returnsError = true
	case 2:
		if t.Out(1) != errorType {
			return nil, eris.Wrapf(ErrInvalidSystem, "%s: second result must be error", t)
		}
		s.returnsValue = true
		s.returnsError = true
	default:
		return nil, eris.Wrapf(ErrInvalidSystem, "%s: too many results", t)
	}
	return s, nil
}

// MustIntoSystem is like IntoSystem but panics on an invalid signature.
func MustIntoSystem(fn any) *FuncSystem {
	s, err := IntoSystem(fn)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name of the wrapped function.
func (s *FuncSystem) Name() string {
	return s.name
}

// Execute runs the function against frame.World.
func (s *FuncSystem) Execute(frame *UpdateFrame) error {
	_, err := s.call(frame)
	return err
}

// Run executes the system once against w and applies its queued commands.
func (s *FuncSystem) Run(w *World) error {
	frame := newUpdateFrame(0, w)
	_, err := s.call(frame)
	if flushErr := frame.Commands.Flush(w); err == nil {
		err = flushErr
	}
	return err
}

// Call executes the system once against w, applies its queued commands and
// returns the function's value result, or nil when it has none.
func (s *FuncSystem) Call(w *World) (any, error) {
	frame := newUpdateFrame(0, w)
	out, err := s.call(frame)
	if err != nil {
		return nil, err
	}
	if err := frame.Commands.Flush(w); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FuncSystem) bind(w *World) {
	if s.world == w && s.injected != nil {
		return
	}
	s.world = w
	s.injected = make([]reflect.Value, len(s.types))
	for i, kind := range s.kinds {
		if kind != paramInjected {
			continue
		}
		p := reflect.New(s.types[i].Elem())
		p.Interface().(SystemParam).Init(w)
		s.injected[i] = p
	}
	s.args = make([]reflect.Value, len(s.types))
}

func (s *FuncSystem) call(frame *UpdateFrame) (any, error) {
	s.bind(frame.World)

	for i, kind := range s.kinds {
		switch kind {
		case paramWorld:
			s.args[i] = reflect.ValueOf(frame.World)
		case paramCommands:
			s.args[i] = reflect.ValueOf(frame.Commands)
		case paramFrame:
			s.args[i] = reflect.ValueOf(frame)
		case paramInjected:
			if v, ok := s.injected[i].Interface().(paramValidator); ok {
				if err := v.validate(); err != nil {
					return nil, eris.Wrapf(err, "system %s", s.name)
				}
			}
			s.args[i] = s.injected[i]
		}
	}

	out := s.fn.Call(s.args)

	var value any
	if s.returnsValue {
		value = out[0].Interface()
	}
	if s.returnsError {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return value, errVal.Interface().(error)
		}
	}
	return value, nil
}
