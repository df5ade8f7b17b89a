package render

// Terreno: cor do vértice (sol + oclusão já calculados no mesher) vezes a
// cor do material, com uma luz direcional leve e neblina por distância.
const terrainVertexShader = `
#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;
uniform mat4 matModel;

out vec4 fragColor;
out vec3 fragNormal;
out vec3 fragWorldPos;

void main()
{
    fragColor = vertexColor;
    fragNormal = normalize(vertexNormal);
    fragWorldPos = vec3(matModel * vec4(vertexPosition, 1.0));
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const terrainFragmentShader = `
#version 330

in vec4 fragColor;
in vec3 fragNormal;
in vec3 fragWorldPos;

uniform vec4 colDiffuse;
uniform vec3 camPos;
uniform float fogDistance;
uniform vec3 fogColor;

out vec4 finalColor;

void main()
{
    vec3 lightDir = normalize(vec3(0.4, 1.0, 0.25));
    float diffuse = 0.75 + 0.25 * max(dot(fragNormal, lightDir), 0.0);

    vec3 color = fragColor.rgb * colDiffuse.rgb * diffuse;

    float dist = length(fragWorldPos - camPos);
    float fog = clamp((dist - fogDistance * 0.6) / (fogDistance * 0.4), 0.0, 1.0);
    finalColor = vec4(mix(color, fogColor, fog), colDiffuse.a * fragColor.a);
}
`

// Água: ondulação vertical suave, só na face de cima.
const waterVertexShader = `
#version 330

in vec3 vertexPosition;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;
uniform float time;

out vec4 fragColor;
out vec3 fragWorldPos;

void main()
{
    vec3 pos = vertexPosition;
    if (vertexNormal.y > 0.9) {
        pos.y += 0.05 * sin(time * 1.7 + pos.x * 0.8) * cos(time * 1.3 + pos.z * 0.6) - 0.08;
    }
    fragColor = vertexColor;
    fragWorldPos = pos;
    gl_Position = mvp * vec4(pos, 1.0);
}
`

const waterFragmentShader = `
#version 330

in vec4 fragColor;
in vec3 fragWorldPos;

uniform vec4 colDiffuse;
uniform vec3 camPos;
uniform float fogDistance;
uniform vec3 fogColor;

out vec4 finalColor;

void main()
{
    vec3 color = fragColor.rgb * colDiffuse.rgb;
    float dist = length(fragWorldPos - camPos);
    float fog = clamp((dist - fogDistance * 0.6) / (fogDistance * 0.4), 0.0, 1.0);
    finalColor = vec4(mix(color, fogColor, fog), colDiffuse.a);
}
`

// Objetos especiais desenhados com DrawMeshInstanced.
const propInstancedVertexShader = `
#version 330

in vec3 vertexPosition;
in vec3 vertexNormal;
in mat4 instanceTransform;

uniform mat4 mvp;

out vec3 fragNormal;

void main()
{
    fragNormal = normalize(mat3(instanceTransform) * vertexNormal);
    gl_Position = mvp * instanceTransform * vec4(vertexPosition, 1.0);
}
`

const propFragmentShader = `
#version 330

in vec3 fragNormal;

uniform vec4 colDiffuse;

out vec4 finalColor;

void main()
{
    vec3 lightDir = normalize(vec3(0.4, 1.0, 0.25));
    float diffuse = 0.6 + 0.4 * max(dot(fragNormal, lightDir), 0.0);
    finalColor = vec4(colDiffuse.rgb * diffuse, colDiffuse.a);
}
`
