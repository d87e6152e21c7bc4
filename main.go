package main

import "github.com/izzsandya6-dev/gemini-ai-health/cmd/healthguard"

func main() {
	healthguard.Execute()
}
