package main

import "github.com/BillTheBest/cdap-security-extn/cmd/authd/cmd"

func main() {
	cmd.Execute()
}
