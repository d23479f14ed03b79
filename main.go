package main

import "github.com/coursedesk/ms-go-checkout/cmd"

func main() {
	cmd.Execute()
}
