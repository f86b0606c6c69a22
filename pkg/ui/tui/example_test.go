package tui_test

import (
	"context"
	"fmt"

	"rblxlocate/pkg/locator"
	"rblxlocate/pkg/ui/tui"
)

func ExampleTUI() {
	var client locator.PlatformClient // e.g. a *roblox.Client from roblox.Login

	view := tui.NewTUI("606849621", "1")
	loc := locator.New(client, locator.WithObserver(view))

	go func() {
		_, err := loc.Locate(context.Background(), "606849621", "1")
		view.Done(err)
	}()

	if err := view.Start(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}

	for _, m := range view.Model().Matches() {
		fmt.Printf("Found joinscript: %s\n", m.JoinScript)
	}
}
