package runner

import (
	"github.com/projectdiscovery/gologger"
)

var banner = `
    __                    ____         
   / /_  __  ______  ____/ / /__  _____
  / __ \/ / / / __ \/ __  / / _ \/ ___/
 / /_/ / /_/ / / / / /_/ / /  __/ /    
/_.___/\__,_/_/ /_/\__,_/_/\___/_/     
`

var version = "v0.1.0"

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tprojectdiscovery.io\n\n")
}
