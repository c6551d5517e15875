package http

import (
	"go.uber.org/fx"

	audittransport "github.com/stickspnw/sticks-work-center/internal/transport/http/audit"
	authtransport "github.com/stickspnw/sticks-work-center/internal/transport/http/auth"
	customertransport "github.com/stickspnw/sticks-work-center/internal/transport/http/customer"
	"github.com/stickspnw/sticks-work-center/internal/transport/http/middleware"
	ordertransport "github.com/stickspnw/sticks-work-center/internal/transport/http/order"
	producttransport "github.com/stickspnw/sticks-work-center/internal/transport/http/product"
	searchtransport "github.com/stickspnw/sticks-work-center/internal/transport/http/search"
	settingtransport "github.com/stickspnw/sticks-work-center/internal/transport/http/setting"
	usertransport "github.com/stickspnw/sticks-work-center/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	middleware.Module,
	authtransport.Module,
	ordertransport.Module,
	customertransport.Module,
	producttransport.Module,
	usertransport.Module,
	settingtransport.Module,
	searchtransport.Module,
	audittransport.Module,
)
