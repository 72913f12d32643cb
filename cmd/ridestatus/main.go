package main

import "github.com/SFTP-RideStatus/ridestatus-installer/internal/cli"

func main() {
	cli.Execute()
}
