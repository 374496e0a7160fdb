// @title                       Kanso Growth Tracker API
// @version                     1.0
// @description                 Daily goals across academic, physical, character and mindset, with period-over-period trend analysis.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

func main() {
	Execute()
}
