package cli

import (
	"fmt"
	"io"

	"github.com/diillson/campaign-metrics-dashboard-go/pkg/console"
	"github.com/diillson/campaign-metrics-dashboard-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer) {
	banner := `
     __  __      _        _             ____            _     _                         _
    |  \/  | ___| |_ _ __(_) ___ ___   |  _ \  __ _ ___| |__ | |__   ___   __ _ _ __ __| |
    | |\/| |/ _ \ __| '__| |/ __/ __|  | | | |/ _' / __| '_ \| '_ \ / _ \ / _' | '__/ _' |
    | |  | |  __/ |_| |  | | (__\__ \  | |_| | (_| \__ \ | | | |_) | (_) | (_| | | | (_| |
    |_|  |_|\___|\__|_|  |_|\___|___/  |____/ \__,_|___/_| |_|_.__/ \___/ \__,_|_|  \__,_|
    `
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, console.BrightCyan(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("Campaign Metrics Dashboard CLI (v%s)", version.FormatVersion())))
}
