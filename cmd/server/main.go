package main

import "reviewhub/internal/app/server"

func main() {
	server.Run()
}
