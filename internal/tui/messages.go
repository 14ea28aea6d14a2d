package tui

// tickMsg asks the model to re-read the status store.
type tickMsg struct{}

// pingerStoppedMsg is sent once the cadence loop has exited and every probe
// was reaped.
type pingerStoppedMsg struct{}
