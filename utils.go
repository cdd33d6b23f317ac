package kafkalink

type none struct{}

// helper for launching goroutines with the appropriate panic handler
func withRecover(fn func()) {
	defer func() {
		handler := PanicHandler
		if handler != nil {
			if err := recover(); err != nil {
				handler(err)
			}
		}
	}()

	fn()
}
