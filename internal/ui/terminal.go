package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/patrickprogramme/reelscribe/internal/clipboard"
	"github.com/patrickprogramme/reelscribe/internal/platform"
)

type terminalUI struct {
	reader   *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	readClip func() (string, error)
	usedClip string // dernière URL reprise du presse-papier
}

// NewTerminal construit l'UI sur stdin/stdout et le presse-papier système.
func NewTerminal() Interface {
	return NewTerminalIO(os.Stdin, os.Stdout, os.Stderr, clipboard.ReadAll)
}

// NewTerminalIO construit l'UI sur des flux arbitraires (tests).
// readClip peut être nil : le presse-papier est alors ignoré.
func NewTerminalIO(in io.Reader, out, errOut io.Writer, readClip func() (string, error)) Interface {
	return &terminalUI{
		reader:   bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		readClip: readClip,
	}
}

func (t *terminalUI) GetURL(ctx context.Context) (string, error) {
	// 1) clipboard, si l'URL n'a pas déjà été utilisée
	if t.readClip != nil {
		if clip, err := t.readClip(); err == nil {
			clip = strings.TrimSpace(clip)
			if clip != t.usedClip && platform.IsSupportedURL(clip) {
				t.usedClip = clip
				t.PrintInfo(ctx, fmt.Sprintf("URL reprise du presse-papier : %s", clip))
				return clip, nil
			}
		}
	}
	// 2) prompt
	fmt.Fprint(t.out, "URL d'un Reel Instagram ou d'un Short YouTube : ")
	return t.readLine()
}

func (t *terminalUI) ReadCommand(ctx context.Context) (Command, error) {
	fmt.Fprint(t.out, "\n[r]efine [t/s/v] copier [d/D] télécharger [w] enregistrer [n]ouvelle [q]uitter > ")
	line, err := t.readLine()
	if err != nil {
		return CmdUnknown, err
	}
	return ParseCommand(line), nil
}

// readLine lit une ligne ; EOF sans contenu => ErrClosed.
func (t *terminalUI) readLine() (string, error) {
	input, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(input) == "" {
				return "", ErrClosed
			}
			return strings.TrimSpace(input), nil
		}
		return "", fmt.Errorf("lecture stdin: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func (t *terminalUI) PrintInfo(ctx context.Context, s string) {
	fmt.Fprintln(t.out, s)
}

func (t *terminalUI) PrintError(ctx context.Context, s string) {
	fmt.Fprintln(t.errOut, "❌ "+s)
}
