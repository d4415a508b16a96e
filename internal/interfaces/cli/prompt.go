package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"

	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

// linePrompter asks for stack inputs one line at a time.
// Sensitive inputs are read without echo when in is a terminal.
type linePrompter struct {
	reader *bufio.Reader
	out    io.Writer
	tty    *os.File
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	p := &linePrompter{reader: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		p.tty = f
	}
	return p
}

func (p *linePrompter) Prompt(in stacks.Input) (string, error) {
	label := in.Label
	if label == "" {
		label = in.Key
	}
	switch {
	case in.Default != "":
		label += fmt.Sprintf(" [%s]", in.Default)
	case in.Generate:
		label += " [generate]"
	}
	fmt.Fprintf(p.out, "%s: ", label)

	if in.Sensitive && p.tty != nil {
		secret, err := term.ReadPassword(p.tty.Fd())
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
