package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/openpan/drive-service/http/controller"
	middlewares "github.com/openpan/drive-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.Use(middles.TraceMiddleware)

	rpcRoutes := r.Group("/rpc")
	{
		rpcRoutes.Use(middles.AuthMiddleware)

		uploadRoutes := rpcRoutes.Group("/upload")
		{
			uploadRoutes.POST("/check", ctrl.CheckUpload)
		}

		s3Routes := rpcRoutes.Group("/s3")
		{
			s3Routes.POST("/create/signed", ctrl.CreateSignedUpload)
			s3Routes.POST("/create/multipart/signed", ctrl.CreateMultipartSignedUpload)
			s3Routes.POST("/multipart/sign-part", ctrl.SignUploadPart)
			s3Routes.POST("/multipart/complete", ctrl.CompleteMultipartUpload)
			s3Routes.PUT("/link", ctrl.LinkUpload)
		}

		fileRoutes := rpcRoutes.Group("/files")
		{
			fileRoutes.GET("", ctrl.ListFiles)
			fileRoutes.POST("/folder", ctrl.CreateFolder)
			fileRoutes.GET("/:id", ctrl.GetFile)
			fileRoutes.PATCH("/:id/rename", ctrl.RenameFile)
			fileRoutes.PATCH("/:id/move", ctrl.MoveFile)
			fileRoutes.DELETE("/:id", ctrl.DeleteFile)
		}

		trashRoutes := rpcRoutes.Group("/trash")
		{
			trashRoutes.GET("", ctrl.ListTrash)
			trashRoutes.POST("/restore/:id", ctrl.RestoreFile)
			trashRoutes.DELETE("/:id", ctrl.PermanentDelete)
		}
	}

	apiRoutes := r.Group("/api/storage")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.GET("/remaining",
			middlewares.RequireCapability("storage:read"), ctrl.GetStorageRemaining)
		apiRoutes.GET("/admin/usage",
			middlewares.RequireCapability("storage:admin"), ctrl.GetAdminUsage)
	}

	return r
}
