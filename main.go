package main

import (
	"context"
	"log"
	"os"

	"github.com/Gabo-code/excelasistSLR-test/config"
	authcontroller "github.com/Gabo-code/excelasistSLR-test/controllers/auth"
	checkincontroller "github.com/Gabo-code/excelasistSLR-test/controllers/checkin"
	checkoutcontroller "github.com/Gabo-code/excelasistSLR-test/controllers/checkout"
	laporancontroller "github.com/Gabo-code/excelasistSLR-test/controllers/laporan"
	listacontroller "github.com/Gabo-code/excelasistSLR-test/controllers/lista"
	"github.com/Gabo-code/excelasistSLR-test/controllers/scheduler"
	waitingcontroller "github.com/Gabo-code/excelasistSLR-test/controllers/waiting"
	"github.com/Gabo-code/excelasistSLR-test/exitflow"
	"github.com/Gabo-code/excelasistSLR-test/gateway"
	"github.com/Gabo-code/excelasistSLR-test/middlewares"
	"github.com/Gabo-code/excelasistSLR-test/viewmodel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	gw := gateway.New(config.BackendURL)
	store := viewmodel.NewStore()
	if err := store.Refresh(context.Background(), gw); err != nil {
		log.Printf("Carga inicial de registros fallida: %v", err)
	}
	refresh := func() {
		if err := store.Refresh(context.Background(), gw); err != nil {
			log.Printf("No se pudo refrescar los registros: %v", err)
		}
	}

	flow := exitflow.New(gw, config.ExitFormCarros)

	checkinHandler := checkincontroller.NewHandler(gw, refresh)
	checkoutHandler := checkoutcontroller.NewHandler(store, flow, gw, refresh)
	waitingHandler := waitingcontroller.NewHandler(store, gw)
	listaHandler := listacontroller.NewHandler(store)
	laporanHandler := laporancontroller.NewHandler(store)

	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	// Las páginas del kiosko se sirven desde cualquier origen estático.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	router.Use(middlewares.RequestID())

	v1 := router.Group("/v1")
	{
		v1.POST("/gate", authcontroller.Gate)
		v1.GET("/drivers", checkinHandler.Drivers)
		v1.GET("/sectors", checkoutHandler.SectorList)
		v1.POST("/checkin", checkinHandler.CheckIn)
		v1.GET("/waiting", waitingHandler.List)
		v1.GET("/attendances", listaHandler.List)

		staff := v1.Group("")
		staff.Use(middlewares.GateMiddleware())
		{
			staff.GET("/exits", checkoutHandler.List)
			staff.POST("/exits/open", checkoutHandler.Open)
			staff.POST("/exits/confirm", checkoutHandler.Confirm)
			staff.POST("/exits/cancel", checkoutHandler.Cancel)
			staff.POST("/exits/absent", checkoutHandler.Absent)
			staff.GET("/report.xlsx", laporanHandler.Export)
		}
	}

	scheduler.Start(store, gw)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Servidor del kiosko escuchando en el puerto %s\n", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
