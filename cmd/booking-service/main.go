// cmd/booking-service/main.go
package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"bistro/internal/pkg/bootstrap"
	"bistro/internal/pkg/httpclient"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
	pkgredis "bistro/internal/pkg/redis"
	"bistro/internal/zookeeper"

	deliveryapp "bistro/internal/service/delivery/application"
	deliveryinfra "bistro/internal/service/delivery/infrastructure"
	deliveryhttp "bistro/internal/service/delivery/interfaces"
	loyaltyapp "bistro/internal/service/loyalty/application"
	loyaltyinfra "bistro/internal/service/loyalty/infrastructure"
	loyaltyadapter "bistro/internal/service/loyalty/infrastructure/adapter"
	"bistro/internal/service/loyalty/infrastructure/rule"
	loyaltyhttp "bistro/internal/service/loyalty/interfaces"
	orderapp "bistro/internal/service/order/application"
	orderinfra "bistro/internal/service/order/infrastructure"
	orderadapter "bistro/internal/service/order/infrastructure/adapter"
	orderhttp "bistro/internal/service/order/interfaces"
	reservationapp "bistro/internal/service/reservation/application"
	reservationdomainport "bistro/internal/service/reservation/domain/port"
	reservationinfra "bistro/internal/service/reservation/infrastructure"
	reservationadapter "bistro/internal/service/reservation/infrastructure/adapter"
	reservationhttp "bistro/internal/service/reservation/interfaces"
)

const serviceName = "booking-service"

func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&orderinfra.OrderModel{}, &orderinfra.OrderItemModel{},
		&deliveryinfra.CourierClaimModel{},
		&reservationinfra.TableModel{}, &reservationinfra.ReservationModel{},
		&loyaltyinfra.LoyaltyPointModel{}, &loyaltyinfra.LoyaltyAccountModel{},
		&loyaltyinfra.RewardModel{}, &loyaltyinfra.RewardRedemptionModel{},
		&loyaltyinfra.LoyaltyCodeModel{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)
	notifyWriter := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.App.NotificationTopic)
	defer notifyWriter.Close()

	// loyalty
	ledgerRepo := loyaltyinfra.NewGormLedgerRepository(db)
	rewardRepo := loyaltyinfra.NewGormRewardRepository(db)
	redemptionRepo := loyaltyinfra.NewGormRedemptionRepository(db)
	codeRepo := loyaltyinfra.NewGormCodeRepository(db)

	ruleEngine, err := rule.NewCELRuleEngine()
	if err != nil {
		log.Fatalf("failed to build rule engine: %v", err)
	}
	var rewardService *loyaltyapp.RewardService
	if cfg.App.EnableRewardFastPath {
		redisClient := pkgredis.NewClient(cfg.Infra.Redis.Addr)
		defer redisClient.Close()
		guard := loyaltyadapter.NewRewardRedisAdapter(redisClient)
		rewardService = loyaltyapp.NewRewardService(rewardRepo, redemptionRepo, ledgerRepo, ruleEngine, guard, tracer)
	} else {
		rewardService = loyaltyapp.NewRewardService(rewardRepo, redemptionRepo, ledgerRepo, ruleEngine, nil, tracer)
	}
	ledgerService := loyaltyapp.NewLedgerService(ledgerRepo, codeRepo, tracer)

	// order
	orderRepo := orderinfra.NewGormOrderRepository(db)
	menuCatalog := orderadapter.NewMenuCatalogAdapter(httpClient, cfg.Services.MenuCatalogURL)
	orderDirectory := orderadapter.NewDirectoryAdapter(httpClient, cfg.Services.DirectoryURL)
	orderNotifier := orderadapter.NewKafkaNotifier(notifyWriter)
	loyaltyBridge := orderadapter.NewLoyaltyAdapter(rewardService, ledgerService)
	orderService := orderapp.NewOrderService(orderRepo, menuCatalog, orderDirectory,
		orderNotifier, loyaltyBridge, loyaltyBridge, tracer)

	// delivery
	deliveryRepo := deliveryinfra.NewGormDeliveryRepository(db)
	deliveryService := deliveryapp.NewDeliveryService(deliveryRepo, orderService, orderNotifier, tracer)

	// reservation
	tableRepo := reservationinfra.NewGormTableRepository(db)
	reservationRepo := reservationinfra.NewGormReservationRepository(db)
	reservationNotifier := reservationadapter.NewKafkaNotifier(notifyWriter)
	reservationDirectory := reservationadapter.NewDirectoryAdapter(httpClient, cfg.Services.DirectoryURL)
	var locker reservationdomainport.TableLocker
	if cfg.App.EnableReservationLock {
		zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			log.Fatalf("failed to connect zookeeper: %v", err)
		}
		defer zkConn.Close()
		locker = reservationadapter.NewZKTableLocker(zkConn)
	}
	reservationService := reservationapp.NewReservationService(tableRepo, reservationRepo,
		locker, reservationNotifier, reservationDirectory, tracer)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8080,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			orderhttp.NewOrderHandler(orderService).RegisterRoutes(appCtx.Mux)
			deliveryhttp.NewDeliveryHandler(deliveryService).RegisterRoutes(appCtx.Mux)
			reservationhttp.NewReservationHandler(reservationService).RegisterRoutes(appCtx.Mux)
			loyaltyhttp.NewLoyaltyHandler(ledgerService, rewardService).RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
	})
}
