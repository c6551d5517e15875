package app

import (
	"go.uber.org/fx"

	"github.com/stickspnw/sticks-work-center/internal/cache"
	"github.com/stickspnw/sticks-work-center/internal/config"
	"github.com/stickspnw/sticks-work-center/internal/database"
	"github.com/stickspnw/sticks-work-center/internal/logger"
	"github.com/stickspnw/sticks-work-center/internal/messaging"
	"github.com/stickspnw/sticks-work-center/internal/observability"
	repositoryaudit "github.com/stickspnw/sticks-work-center/internal/repository/audit"
	repositorycustomer "github.com/stickspnw/sticks-work-center/internal/repository/customer"
	repositoryorder "github.com/stickspnw/sticks-work-center/internal/repository/order"
	repositoryproduct "github.com/stickspnw/sticks-work-center/internal/repository/product"
	repositorysetting "github.com/stickspnw/sticks-work-center/internal/repository/setting"
	repositoryuser "github.com/stickspnw/sticks-work-center/internal/repository/user"
	grpcserver "github.com/stickspnw/sticks-work-center/internal/server/grpc"
	httpserver "github.com/stickspnw/sticks-work-center/internal/server/http"
	serviceaudit "github.com/stickspnw/sticks-work-center/internal/service/audit"
	serviceauth "github.com/stickspnw/sticks-work-center/internal/service/auth"
	servicecustomer "github.com/stickspnw/sticks-work-center/internal/service/customer"
	serviceexport "github.com/stickspnw/sticks-work-center/internal/service/export"
	serviceorder "github.com/stickspnw/sticks-work-center/internal/service/order"
	serviceproduct "github.com/stickspnw/sticks-work-center/internal/service/product"
	servicesearch "github.com/stickspnw/sticks-work-center/internal/service/search"
	servicesetting "github.com/stickspnw/sticks-work-center/internal/service/setting"
	serviceuser "github.com/stickspnw/sticks-work-center/internal/service/user"
	transporthttp "github.com/stickspnw/sticks-work-center/internal/transport/http"
	"github.com/stickspnw/sticks-work-center/internal/worker"
	workerorder "github.com/stickspnw/sticks-work-center/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,

	repositoryorder.Module,
	repositorycustomer.Module,
	repositoryproduct.Module,
	repositoryuser.Module,
	repositorysetting.Module,
	repositoryaudit.Module,

	serviceaudit.Module,
	serviceauth.Module,
	serviceorder.Module,
	servicecustomer.Module,
	serviceproduct.Module,
	serviceuser.Module,
	servicesetting.Module,
	servicesearch.Module,
	serviceexport.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
