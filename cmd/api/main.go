package main

import "miniloan-backend/internal/cli"

func main() { cli.Execute() }
