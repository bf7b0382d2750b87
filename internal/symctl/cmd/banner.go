package cmd

const bannerText = `
  ____                  _     _             _
 / ___| _   _ _ __ ___ | |__ (_) ___  _ __ | |_
 \___ \| | | | '_ ` + "`" + ` _ \| '_ \| |/ _ \| '_ \| __|
  ___) | |_| | | | | | | |_) | | (_) | | | | |_
 |____/ \__, |_| |_| |_|_.__/|_|\___/|_| |_|\__|
        |___/

        Symbiont Plugin Host
`

// Banner returns the CLI banner string.
func Banner() string {
	return bannerText + "\n"
}
