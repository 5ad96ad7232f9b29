// Package eventloop runs callbacks sequentially on one goroutine and offers
// cancellable timers whose callbacks are delivered through the same queue.
package eventloop
