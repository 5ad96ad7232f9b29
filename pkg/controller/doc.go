// Package controller binds the feedback form behaviour to a parsed page.
//
// Bind looks up the form, its fields, the error slots, the character counter
// and the confirmation overlay by id, then registers the listeners that run
// validation on blur, clear errors on input, keep the counter in step with the
// message and drive the simulated submission:
//
//	loop := eventloop.New()
//	go loop.Run(ctx)
//	ctrl, err := controller.Bind(doc, controller.WithLoop(loop))
//
// The controller never locks. Every call, including the listeners fired by
// dom helpers, must happen on the goroutine that runs the loop.
package controller
