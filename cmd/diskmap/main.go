package main

import "diskmap/internal/app"

func main() {
	app.Run()
}
