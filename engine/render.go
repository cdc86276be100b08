package engine

import "fmt"

// RenderParamType tags an entry of a render parameter list.
// Values match mpv_render_param_type.
type RenderParamType int

const (
	ParamInvalid          RenderParamType = 0
	ParamAPIType          RenderParamType = 1
	ParamOpenGLInitParams RenderParamType = 2
	ParamOpenGLFBO        RenderParamType = 3
	ParamFlipY            RenderParamType = 4
)

func (t RenderParamType) String() string {
	switch t {
	case ParamInvalid:
		return "invalid"
	case ParamAPIType:
		return "api-type"
	case ParamOpenGLInitParams:
		return "opengl-init-params"
	case ParamOpenGLFBO:
		return "opengl-fbo"
	case ParamFlipY:
		return "flip-y"
	default:
		return fmt.Sprintf("param(%d)", int(t))
	}
}

// APITypeOpenGL is the only render API supported by the GL render path.
const APITypeOpenGL = "opengl"

// ProcAddressFunc resolves a GL entry point by name. It must stay valid for
// the lifetime of the render context it was handed to.
type ProcAddressFunc func(name string) uintptr

// OpenGLInitParams is the data of a ParamOpenGLInitParams entry.
type OpenGLInitParams struct {
	GetProcAddress ProcAddressFunc
}

// OpenGLFBO describes the framebuffer a frame is rendered into.
// FBO 0 is the default framebuffer, InternalFormat 0 means unknown.
type OpenGLFBO struct {
	FBO            int
	W, H           int
	InternalFormat int
}

// RenderParam is one typed entry of a render parameter list.
//
//	ParamAPIType          string
//	ParamOpenGLInitParams *OpenGLInitParams
//	ParamOpenGLFBO        *OpenGLFBO
//	ParamFlipY            bool
//	ParamInvalid          nil
type RenderParam struct {
	Type RenderParamType
	Data any
}

// Sentinel terminates every render parameter list.
var Sentinel = RenderParam{Type: ParamInvalid}

// ValidateParams checks that params is terminated by exactly one sentinel
// and that every entry carries data of the expected type.
func ValidateParams(params []RenderParam) error {
	if len(params) == 0 || params[len(params)-1].Type != ParamInvalid {
		return fmt.Errorf("%w: render parameter list is not terminated", ErrInvalidParameter)
	}

	for i, p := range params[:len(params)-1] {
		var ok bool
		switch p.Type {
		case ParamAPIType:
			_, ok = p.Data.(string)
		case ParamOpenGLInitParams:
			var gl *OpenGLInitParams
			gl, ok = p.Data.(*OpenGLInitParams)
			ok = ok && gl != nil && gl.GetProcAddress != nil
		case ParamOpenGLFBO:
			var fbo *OpenGLFBO
			fbo, ok = p.Data.(*OpenGLFBO)
			ok = ok && fbo != nil
		case ParamFlipY:
			_, ok = p.Data.(bool)
		case ParamInvalid:
			return fmt.Errorf("%w: sentinel at position %d", ErrInvalidParameter, i)
		}

		if !ok {
			return fmt.Errorf("%w: bad data %T for %s", ErrInvalidParameter, p.Data, p.Type)
		}
	}

	return nil
}

// Lookup returns the data of the first entry of the given type.
func Lookup[T any](params []RenderParam, typ RenderParamType) (value T, ok bool) {
	for _, p := range params {
		if p.Type == ParamInvalid {
			break
		}
		if p.Type == typ {
			value, ok = p.Data.(T)
			return
		}
	}
	return
}
