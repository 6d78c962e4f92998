// Command fintips serves and prints AI budgeting tips.
package main

func main() {
	Execute()
}
