package main

import (
	"currycrave/apps/gateway"
	"currycrave/cmd/gateway/router"
	"currycrave/internal"
	"currycrave/pkg"

	"go.uber.org/fx"
)

func main() {
	fx.New(
		gateway.Module,
		router.Module,
		pkg.Module,
		internal.Module,
	).Run()
}
