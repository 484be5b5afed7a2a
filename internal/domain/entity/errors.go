package entity

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoCandidates в наборе нет исходных изображений с нужной меткой
	ErrNoCandidates = errors.New("no non-augmented samples contain the label")
	// ErrStalled аугментации подряд не дают объектов нужной метки
	ErrStalled = errors.New("augmentation makes no progress for the label")
	// ErrBoxOutOfFrame рамка после преобразования вышла за кадр
	ErrBoxOutOfFrame = errors.New("box is outside of the image frame")
	// ErrEngineMismatch движок вернул рамки и метки разной длины
	ErrEngineMismatch = errors.New("engine returned misaligned boxes and labels")
)

// ParseError некорректный файл разметки. Прерывает весь запуск.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError отсутствующий или недоступный для записи файл
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsParseError проверяет, есть ли в цепочке ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsIOError проверяет, есть ли в цепочке IOError
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
