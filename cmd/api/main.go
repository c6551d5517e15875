package main

import (
	"go.uber.org/fx"

	"github.com/stickspnw/sticks-work-center/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
