package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func defaultIsTerminal() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

var defaultReadPassword = term.ReadPassword

// Test seams for the terminal.
var (
	readPassword = defaultReadPassword
	isTerminal   = defaultIsTerminal
)

// promptPassword asks for a password on w. On a terminal the input is not
// echoed; otherwise a single line is read from in.
func promptPassword(in io.Reader, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}

	if isTerminal() {
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
