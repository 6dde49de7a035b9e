package cli

import (
	"fmt"

	"github.com/diillson/aws-cost-optimizer-go/pkg/console"
	"github.com/diillson/aws-cost-optimizer-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner() {
	banner := `
    ___ _       _______    ____        __  _           _
   /   | |     / / ___/   / __ \____  / /_(_)___ ___  (_)___  ___  _____
  / /| | | /| / /\__ \   / / / / __ \/ __/ / __ ` + "`" + `__ \/ /_  / / _ \/ ___/
 / ___ | |/ |/ /___/ /  / /_/ / /_/ / /_/ / / / / / / / / /_/  __/ /
/_/  |_|__/|__//____/   \____/ .___/\__/_/_/ /_/ /_/_/ /___/\___/_/
                            /_/
`
	fmt.Println(console.BoldRed(banner))
	fmt.Println(console.BrightCyan(fmt.Sprintf("AWS Cost Optimizer CLI (v%s)", version.FormatVersion())))
}

func displayLiveWarning() {
	fmt.Println(console.BrightYellow("LIVE mode: resources will be modified or deleted."))
}
