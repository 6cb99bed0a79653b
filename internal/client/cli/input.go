package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalPassword читает пароль без эха, если stdin является терминалом,
// иначе читает одну строку из входного потока.
func (a *App) terminalPassword() (string, error) {
	fmt.Fprint(a.errOut, "Password: ")

	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine(a.in)
}

// prompt выводит приглашение и читает строку.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.errOut, "%s: ", label)
	return readLine(a.in)
}

// readLine читает байты по одному, чтобы не забирать из потока
// следующие строки, предназначенные другим вызовам.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				break
			}
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
