// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startWaitSpinner shows an animated one-line spinner with the given text in
// a pterm area. It hides the cursor while running and returns a function that
// stops the animation, removes the line and shows the cursor again.
func startWaitSpinner(text string) func() {
	cursor.Hide()
	area, aerr := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if aerr != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
		_ = area.Stop()
		cursor.Show()
	}
}
