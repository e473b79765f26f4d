package main

import (
	"fmt"
	"io"
)

func printBanner(w io.Writer) {
	banner := `
 ____                  ____  _   _    _
|  _ \ _ __ ___  _ __ |  _ \| \ | |  / \
| | | | '__/ _ \| '_ \| | | |  \| | / _ \
| |_| | | | (_) | |_) | |_| | |\  |/ ___ \
|____/|_|  \___/| .__/|____/|_| \_/_/   \_\
                |_|
          Drop Detection CLI Tool
`
	fmt.Fprintln(w, banner)
}
