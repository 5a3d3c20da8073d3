package handlers

import "github.com/gin-gonic/gin"

func StatusRoot(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
