package cli

import (
	"fmt"

	"github.com/fatih/color"
)

func displayWelcomeBanner() {
	banner := `
   _        __              _            _
  (_)_ __  / _|_ __ __ _   | |_ ___  ___| |_
  | | '_ \| |_| '__/ _' |  | __/ _ \/ __| __|
  | | | | |  _| | | (_| |  | ||  __/\__ \ |_
  |_|_| |_|_| |_|  \__,_|   \__\___||___/\__|
`
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))
	fmt.Println(blue("Infrastructure Testing Toolbox CLI"))
}
