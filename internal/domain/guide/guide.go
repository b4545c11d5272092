package guide

import "strings"

// Route keys of the dashboard sections that carry narration.
const (
	RouteDashboard = "dashboard"
	RouteDatasets  = "datasets"
	RouteCleaning  = "limpieza"
	RouteTraining  = "entrenamiento"
	RouteResults   = "resultados"
	RouteLogin     = "login"
	Welcome        = "bienvenida"
)

// VoiceTestPhrase is read by the voice picker's "try it" action.
const VoiceTestPhrase = "Esta es una prueba de la voz seleccionada."

// Texts maps a route key to the narration read when the user lands on it.
type Texts map[string]string

// DefaultTexts returns the built-in Spanish narration for every section.
func DefaultTexts() Texts {
	return Texts{
		Welcome: "¡Bienvenido a ML Studio! Has iniciado sesión correctamente. " +
			"Te encuentras en el Dashboard, donde podrás ver un resumen de tu actividad y tus experimentos recientes. " +
			"La guía de voz está activada para ayudarte a navegar por la aplicación.",
		RouteDashboard: "En el Dashboard podrás ver un resumen general de tu actividad, incluyendo estadísticas sobre tus datasets y experimentos. " +
			"También encontrarás una lista de tus experimentos más recientes.",
		RouteDatasets: "En esta sección de Datasets puedes gestionar tus conjuntos de datos. " +
			"Puedes subir nuevos archivos CSV que tengas descargados previamente, ver detalles de los existentes y eliminarlos si lo necesitas. " +
			"Cada dataset puede ser usado posteriormente para entrenar modelos de machine learning.",
		RouteCleaning: "Esta es la sección de Limpieza de Datos. Aquí podrás analizar la calidad de tus datos, visualizar estadísticas " +
			"y aplicar diferentes operaciones de limpieza como eliminar valores nulos, normalizar datos y codificar variables categóricas.",
		RouteTraining: "En esta sección de Entrenamiento podrás configurar y entrenar tus modelos de machine learning. " +
			"Selecciona un dataset, elige las variables de entrada y objetivo, y ajusta los hiperparámetros del modelo según tus necesidades.",
		RouteResults: "La sección de Resultados te permite visualizar y analizar el rendimiento de tus modelos entrenados. " +
			"Encontrarás métricas detalladas, gráficos de rendimiento y podrás comparar diferentes experimentos.",
		RouteLogin: "Bienvenido a ML Studio. Para comenzar, inicia sesión con tu cuenta o regístrate si eres nuevo. " +
			"Una vez dentro, tendrás acceso a todas las herramientas de análisis y machine learning.",
	}
}

// Merge returns a copy of t with every non-empty entry of overrides applied.
func (t Texts) Merge(overrides map[string]string) Texts {
	out := make(Texts, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// KeyFromPath derives the route key from a location path: the first path
// segment, or the dashboard for the root.
func KeyFromPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RouteDashboard
	}
	return path
}
