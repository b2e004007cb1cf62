package main

import "github.com/locvowork/employee_management_sample/console/internal/cli"

func main() {
	cli.Execute()
}
