package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/onboarding/internal/client/autosave"
	"github.com/dmitrijs2005/onboarding/internal/client/wizard"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/filex"
	"github.com/dmitrijs2005/onboarding/internal/steps"
)

// stepper is the wizard surface the REPL drives.
type stepper interface {
	Current() steps.Number
	Completed() bool
	Values() map[string]any
	Set(name string, value any) error
	Next(ctx context.Context) error
	Back(ctx context.Context) error
	Jump(ctx context.Context, n steps.Number) error
	Save(ctx context.Context) error
}

// imageResolver turns what the user typed for an image field into the value
// stored in the step.
type imageResolver func(ctx context.Context, text string) (string, error)

const wizardHelp = `Type field=value to edit (lists are comma separated), or:
  :next        save this step and continue
  :back        save this step and go back
  :goto N      jump to step N
  :show        show this step again
  :quit        save and leave`

func (a *App) RunWizard(ctx context.Context) error {
	syncer := autosave.New(a.api, a.config.AutosaveDelay, a.logger)
	defer syncer.Close()

	w := wizard.New(a.api, syncer)
	if err := w.Start(ctx); err != nil {
		return explain(err)
	}

	a.printf("%s\n\n", wizardHelp)
	return runREPL(ctx, w, bufio.NewScanner(a.reader), a.out, a.resolveImage)
}

// resolveImage accepts a data URL, an already uploaded key, or a local file
// path. Files are uploaded to object storage; if that fails they are stored
// inline as a data URL.
func (a *App) resolveImage(ctx context.Context, text string) (string, error) {
	if text == "" || strings.HasPrefix(text, "data:") || steps.IsObjectKey(text) {
		return text, nil
	}

	img, err := filex.ReadLimited(text, steps.MaxImageBytes)
	if err != nil {
		return "", common.NewValidationError("profileImage", "%v", err)
	}
	ct := http.DetectContentType(img)
	if !strings.HasPrefix(ct, "image/") {
		return "", common.NewValidationError("profileImage", "%s is not an image (%s)", text, ct)
	}

	key, err := a.api.UploadProfileImage(ctx, ct, img)
	if err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			return "", err
		}
		a.logger.Warn(ctx, "image upload failed, storing inline", "error", err.Error())
		return steps.DataURL(ct, img), nil
	}
	return key, nil
}

func printStep(out io.Writer, w stepper) {
	n := w.Current()
	fmt.Fprintf(out, "Step %d of %d: %s\n", n, steps.Last, n.Title())
	values := w.Values()
	fields := steps.Fields(n)
	if len(fields) == 0 {
		fmt.Fprintln(out, "  (nothing to fill in, type :next)")
	}
	for _, f := range fields {
		mark := " "
		if f.Required {
			mark = "*"
		}
		line := fmt.Sprintf(" %s %-16s %s", mark, f.Name, f.Label)
		if len(f.Options) > 0 {
			line += " [" + strings.Join(f.Options, " | ") + "]"
		}
		if v := steps.Describe(values[f.Name]); v != "" {
			line += " = " + v
		}
		fmt.Fprintln(out, line)
	}
}

// runREPL reads commands until :quit, EOF or form submission. Errors of
// individual commands are printed and the loop continues; only a lost
// session ends it with an error.
func runREPL(ctx context.Context, w stepper, scanner *bufio.Scanner, out io.Writer, images imageResolver) error {
	printStep(out, w)

	for {
		fmt.Fprintf(out, "step %d> ", w.Current())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return saveOnExit(ctx, w, out)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var err error
		moved := false
		switch {
		case line == ":quit" || line == ":q":
			return saveOnExit(ctx, w, out)
		case line == ":help":
			fmt.Fprintln(out, wizardHelp)
		case line == ":show":
			printStep(out, w)
		case line == ":next":
			err, moved = w.Next(ctx), true
		case line == ":back":
			err, moved = w.Back(ctx), true
		case strings.HasPrefix(line, ":goto"):
			arg := strings.TrimSpace(strings.TrimPrefix(line, ":goto"))
			n, convErr := strconv.Atoi(arg)
			if convErr != nil {
				err = fmt.Errorf("usage: :goto N (1-%d)", steps.Last)
				break
			}
			err, moved = w.Jump(ctx, steps.Number(n)), true
		case strings.HasPrefix(line, ":"):
			err = fmt.Errorf("unknown command %s, type :help", line)
		default:
			err = setField(ctx, w, line, images)
		}

		if err != nil {
			fmt.Fprintln(out, "error:", err)
			if errors.Is(err, common.ErrSessionExpired) {
				return explain(err)
			}
			continue
		}

		if w.Completed() {
			fmt.Fprintln(out, "Form submitted. Thank you!")
			return nil
		}
		if moved {
			printStep(out, w)
		}
	}
}

func setField(ctx context.Context, w stepper, line string, images imageResolver) error {
	name, text, ok := strings.Cut(line, "=")
	if !ok {
		return errors.New("expected field=value")
	}
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)

	f, ok := steps.Lookup(w.Current(), name)
	if !ok {
		return common.NewValidationError(name, "unknown field for step %d", w.Current())
	}

	var value any
	var err error
	if f.Kind == steps.KindImage {
		value, err = images(ctx, text)
	} else {
		value, err = steps.ParseValue(f, text)
	}
	if err != nil {
		return err
	}
	return w.Set(name, value)
}

func saveOnExit(ctx context.Context, w stepper, out io.Writer) error {
	if err := w.Save(ctx); err != nil {
		fmt.Fprintln(out, "warning: last changes were not saved:", err)
		return explain(err)
	}
	fmt.Fprintln(out, "Progress saved. Bye!")
	return nil
}
