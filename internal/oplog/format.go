package oplog

import (
	"fmt"
	"strings"

	"github.com/Kargones/emprev/internal/pkg/apperrors"
)

// nilErrorText — представление отсутствующей ошибки.
const nilErrorText = "<nil>"

// render форматирует шаблон по правилам fmt. Шаблон без аргументов
// возвращается как есть, чтобы одиночный '%' в тексте не превращался в "%!".
// Несовпадение числа аргументов даёт стандартные маркеры fmt ("%!d(MISSING)").
func render(template string, args []any) (msg string) {
	if len(args) == 0 {
		return template
	}
	defer func() {
		if r := recover(); r != nil {
			msg = renderTypes(template, args)
		}
	}()
	return fmt.Sprintf(template, args...)
}

// renderTypes — запасной вариант: шаблон и типы аргументов, без вызова их методов.
func renderTypes(template string, args []any) string {
	var b strings.Builder
	b.WriteString(template)
	for _, a := range args {
		fmt.Fprintf(&b, " [%T]", a)
	}
	return b.String()
}

// describeError возвращает текст и вид ошибки. Не паникует на typed-nil ошибках,
// чей Error() разыменовывает nil.
func describeError(err error) (msg, kind string) {
	if err == nil {
		return nilErrorText, ""
	}
	defer func() {
		if r := recover(); r != nil {
			msg = nilErrorText
			kind = fmt.Sprintf("%T", err)
		}
	}()
	return err.Error(), apperrors.Kind(err)
}
