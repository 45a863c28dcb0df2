package preview

// busy reports whether a cycle is in flight, after every event sent before it was handled.
func (c *Coordinator) busy() bool {
	reply := make(chan bool, 1)
	c.send(busyQuery{reply: reply})
	select {
	case b := <-reply:
		return b
	case <-c.stopped:
		return false
	}
}
