package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/steps"
)

func (a *App) ShowForm(ctx context.Context) error {
	entry, err := a.api.GetForm(ctx)
	if err != nil {
		return explain(err)
	}

	for _, n := range steps.All() {
		a.printf("%d. %s\n", n, n.Title())
		data := entry.Steps[n.Key()]
		for _, f := range steps.Fields(n) {
			if v, ok := data[f.Name]; ok {
				a.printf("   %-16s %s\n", f.Name, steps.Describe(v))
			}
		}
	}

	if entry.Completed && entry.CompletedAt != nil {
		a.printf("Submitted at %s\n", entry.CompletedAt.Local().Format(time.RFC1123))
	} else {
		a.printf("Not submitted yet.\n")
	}
	return nil
}

func (a *App) ProfileImageURL(ctx context.Context) error {
	url, err := a.api.ProfileImageURL(ctx)
	if err != nil {
		return explain(err)
	}
	a.printf("%s\n", url)
	return nil
}
