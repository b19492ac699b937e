package main

import "taskboard/internal/app"

// @title           Taskboard API
// @version         1.0
// @description     Collaborative task board: shared rooms, live boards, audit trail.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
